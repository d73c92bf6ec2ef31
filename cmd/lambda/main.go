// Command lambda serves the todo API from AWS Lambda behind an API Gateway
// REST proxy integration.
package main

import (
	"context"
	"log"

	"github.com/birlikkoshan/todo-serverless/internal/app"
	"github.com/birlikkoshan/todo-serverless/internal/config"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
)

var adapter *ginadapter.GinLambda

// Store clients are created once per execution environment and reused across invocations.
func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("app init: %v", err)
	}
	adapter = ginadapter.New(application.Router())
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return adapter.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handler)
}

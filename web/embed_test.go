package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSHasClient(t *testing.T) {
	for _, name := range []string{"index.html", "app.js", "styles.css"} {
		b, err := fs.ReadFile(FS(), name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, b, name)
	}
}

func TestConfigJS(t *testing.T) {
	assert.Equal(t,
		"window.TODO_CONFIG = {\"apiUrl\":\"https://api.example.com/api\"};\n",
		string(ConfigJS(ClientConfig{APIURL: "https://api.example.com/api"})))

	withKey := string(ConfigJS(ClientConfig{APIURL: "/api", APIKey: "k1"}))
	assert.Contains(t, withKey, `"apiKey":"k1"`)

	// cannot break out of the script
	assert.NotContains(t, string(ConfigJS(ClientConfig{APIURL: `x"</script>`})), "</script>")
}

func TestAppSendsAPIKey(t *testing.T) {
	b, err := fs.ReadFile(FS(), "app.js")
	require.NoError(t, err)
	assert.Contains(t, string(b), "X-Api-Key")
}

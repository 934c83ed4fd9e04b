package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeModIO serves the mod.io API and CDN for the mods it knows
type fakeModIO struct {
	server  *httptest.Server
	mods    map[string][]byte // slug -> zip payload
	missing map[string]bool
	goodKey string
}

func newFakeModIO(t *testing.T) *fakeModIO {
	t.Helper()
	f := &fakeModIO{mods: map[string][]byte{}, missing: map[string]bool{}, goodKey: "test-key"}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/games", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != f.goodKey {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"code":401,"message":"bad key"}}`)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	})
	mux.HandleFunc("/v1/games/@demo/mods/", func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimPrefix(r.URL.Path, "/v1/games/@demo/mods/@")
		payload, ok := f.mods[slug]
		if !ok || f.missing[slug] {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":404,"message":"mod not found"}}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":   1,
			"name": slug,
			"modfile": map[string]any{
				"id":       7,
				"filename": slug + ".zip",
				"filesize": len(payload),
				"download": map[string]any{"binary_url": "https://cdn.test/files/" + slug + ".zip"},
			},
		})
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/files/"), ".zip")
		w.Write(f.mods[slug])
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeModIO) add(t *testing.T, slug string, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	f.mods[slug] = buf.Bytes()
	return "https://mod.io/g/demo/m/" + slug
}

// rewriteTransport sends every request to target, keeping the path
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = ""
	return http.DefaultTransport.RoundTrip(r)
}

// cli runs modman commands against temporary config and data directories
type cli struct {
	t       *testing.T
	config  string
	data    string
	modsDir string
	api     *fakeModIO
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	api := newFakeModIO(t)
	target, err := url.Parse(api.server.URL)
	require.NoError(t, err)

	prev := httpClient
	httpClient = &http.Client{Transport: rewriteTransport{target: target}}
	t.Cleanup(func() { httpClient = prev })

	t.Setenv("MODIO_API_KEY", api.goodKey)
	t.Setenv("NEXUSMODS_API_KEY", "")
	t.Setenv("CURSEFORGE_API_KEY", "")
	t.Setenv("NO_COLOR", "1")

	c := &cli{t: t, config: t.TempDir(), data: t.TempDir(), api: api}
	c.modsDir = filepath.Join(c.data, "mods")
	return c
}

func resetFlags() {
	profileName = ""
	verbose = false
	jsonOutput = false
	noColor = false
	listAll = false
	deleteYes = false
	historyLimit = 20
	historyRun = ""
	historyAll = false
	statsAll = false
	authNoValidate = false
	profileSteamApp = ""
}

// runIn executes args with stdin as input and returns stdout and stderr
func (c *cli) runIn(stdin string, args ...string) (string, string, error) {
	c.t.Helper()
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", c.config, "--data", c.data}, args...))
	c.t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	out, _, err := c.runIn("", args...)
	return out, err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func (c *cli) listJSON(args ...string) []modJSON {
	c.t.Helper()
	out := c.mustRun(append([]string{"list", "--json"}, args...)...)
	var mods []modJSON
	require.NoError(c.t, json.Unmarshal([]byte(out), &mods), out)
	return mods
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

package server

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cyfeng16/depth-estimator/internal/app"
	"github.com/cyfeng16/depth-estimator/internal/config"
	"github.com/cyfeng16/depth-estimator/internal/services/depth"
	"github.com/cyfeng16/depth-estimator/internal/services/modelstore"
	"github.com/cyfeng16/depth-estimator/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

func readFrame(conn net.Conn) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return nil, err
	}

	payload := make([]byte, binary.BigEndian.Uint32(header[:]))
	if _, err := io.ReadFull(conn, payload); err != nil {
		return nil, err
	}

	return payload, nil
}

func writeFrame(conn net.Conn, payload []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	if _, err := conn.Write(header[:]); err != nil {
		return err
	}
	_, err := conn.Write(payload)
	return err
}

func startFakeWorker(t *testing.T, handle func(req *depth.Request) *depth.Response) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(conn net.Conn) {
				defer conn.Close()

				payload, err := readFrame(conn)
				if err != nil {
					return
				}

				req := &depth.Request{}
				if err := msgpack.Unmarshal(payload, req); err != nil {
					return
				}

				reply, err := msgpack.Marshal(handle(req))
				if err != nil {
					return
				}
				writeFrame(conn, reply)
			}(conn)
		}
	}()

	return listener.Addr().String()
}

func writeWeightsFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "depth.safetensors")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0xAB}, 1024*1024+512), 0644))
	return path
}

func newTestStack(t *testing.T, modelID, workerAddr string) (*Server, *config.Config) {
	t.Helper()

	home := t.TempDir()
	cfg := &config.Config{
		Host:        "127.0.0.1",
		Port:        45944,
		Environment: "test",
		HomeDir:     home,
		AssetsDir:   filepath.Join(home, "assets"),
		ModelsDir:   filepath.Join(home, "models"),
		TempDir:     filepath.Join(home, "temp"),
		PublicDir:   filepath.Join(home, "public"),
		ModelID:     modelID,
		Filesystem:  config.FilesystemLocal,
		TcpTimeout:  2,
	}

	for _, dir := range []string{cfg.AssetsDir, cfg.ModelsDir, cfg.TempDir, cfg.PublicDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	if workerAddr != "" {
		host, portStr, err := net.SplitHostPort(workerAddr)
		require.NoError(t, err)
		port, err := strconv.Atoi(portStr)
		require.NoError(t, err)
		cfg.WorkerHost = host
		cfg.TcpPort = port
	}

	a, err := app.NewApp(cfg,
		app.WithLogger(zap.NewNop()),
		app.WithFileStorage(),
		app.WithModelStore(),
		app.WithEstimation(),
	)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	s, err := NewServer(cfg)
	require.NoError(t, err)
	s.SetupRoutes(a)

	return s, cfg
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ginEngine.ServeHTTP(w, req)
	return w
}

func multipartFile(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(40 * x), G: uint8(40 * y), B: 128, A: 255})
		}
	}

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestHealthz(t *testing.T) {
	s, _ := newTestStack(t, config.DefaultModelID, "")

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestIndexServesBuiltInPage(t *testing.T) {
	s, _ := newTestStack(t, config.DefaultModelID, "")

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "DepthEstimator")
	assert.Contains(t, w.Body.String(), "Estimate!")
}

func TestPublicDirShadowsBuiltInPage(t *testing.T) {
	s, cfg := newTestStack(t, config.DefaultModelID, "")

	custom := []byte("<html><body>custom front page</body></html>")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.PublicDir, "index.html"), custom, 0644))

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "custom front page")
}

func TestEstimateEndToEnd(t *testing.T) {
	weights := writeWeightsFile(t)

	addr := startFakeWorker(t, func(req *depth.Request) *depth.Response {
		return &depth.Response{Status: "ok", Width: 2, Height: 2, Depth: []float32{0, 1, 2, 3}}
	})

	s, cfg := newTestStack(t, "file:"+weights, addr)

	body, contentType := multipartFile(t, "photo.png", pngBytes(t, 4, 3))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate", body)
	req.Header.Set("Content-Type", contentType)

	w := doRequest(s, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.EstimateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error)

	prefix := fmt.Sprintf("http://%s:%d/file/", cfg.Host, cfg.Port)
	require.True(t, strings.HasPrefix(resp.Original, prefix), resp.Original)
	require.True(t, strings.HasPrefix(resp.Depth, prefix), resp.Depth)

	// The rendered depth map comes back at the source resolution.
	fileReq := httptest.NewRequest(http.MethodGet, "/file/"+strings.TrimPrefix(resp.Depth, prefix), nil)
	fileResp := doRequest(s, fileReq)
	require.Equal(t, http.StatusOK, fileResp.Code)

	img, err := png.Decode(bytes.NewReader(fileResp.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
}

func TestEstimateReportsFailureInBand(t *testing.T) {
	s, _ := newTestStack(t, "a/b/c", "")

	body, contentType := multipartFile(t, "photo.png", pngBytes(t, 2, 2))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate", body)
	req.Header.Set("Content-Type", contentType)

	w := doRequest(s, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.EstimateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Error, "Error during estimation: "), resp.Error)
	assert.NotEmpty(t, resp.Original)
	assert.Empty(t, resp.Depth)
}

func TestEstimateRejectsMissingFile(t *testing.T) {
	s, _ := newTestStack(t, config.DefaultModelID, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(s, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadAndFetchFile(t *testing.T) {
	s, cfg := newTestStack(t, config.DefaultModelID, "")

	content := pngBytes(t, 2, 2)
	body, contentType := multipartFile(t, "upload.png", content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := doRequest(s, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status string               `json:"status"`
		Data   types.UploadResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	prefix := fmt.Sprintf("http://%s:%d/file/", cfg.Host, cfg.Port)
	require.True(t, strings.HasPrefix(resp.Data.Url, prefix), resp.Data.Url)

	fileReq := httptest.NewRequest(http.MethodGet, "/file/"+strings.TrimPrefix(resp.Data.Url, prefix), nil)
	fileResp := doRequest(s, fileReq)
	require.Equal(t, http.StatusOK, fileResp.Code)
	assert.Equal(t, content, fileResp.Body.Bytes())
}

func TestGetFileNotFound(t *testing.T) {
	s, _ := newTestStack(t, config.DefaultModelID, "")

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/file/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestModelStatusDefaultsToConfiguredModel(t *testing.T) {
	weights := writeWeightsFile(t)
	s, _ := newTestStack(t, "file:"+weights, "")

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/models/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string                   `json:"status"`
		Data   []modelstore.ModelStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "file:"+weights, resp.Data[0].ModelID)
	assert.Equal(t, modelstore.StatusReady, resp.Data[0].Status)
}

func TestDownloadModelsLocalFile(t *testing.T) {
	weights := writeWeightsFile(t)
	s, _ := newTestStack(t, "file:"+weights, "")

	payload, err := json.Marshal(map[string][]string{"model_ids": {"file:" + weights}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/models/download", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(s, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestDownloadModelsRejectsUnknownContentType(t *testing.T) {
	s, _ := newTestStack(t, config.DefaultModelID, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/models/download", strings.NewReader("model"))
	req.Header.Set("Content-Type", "text/plain")

	w := doRequest(s, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported content type")
}

func TestGetGinMode(t *testing.T) {
	assert.Equal(t, gin.DebugMode, getGinMode("development"))
	assert.Equal(t, gin.TestMode, getGinMode("test"))
	assert.Equal(t, gin.ReleaseMode, getGinMode("production"))
}

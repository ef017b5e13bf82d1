package depth

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

const opEstimate = "estimate"

const (
	statusOK    = "ok"
	statusError = "error"
)

// Request is one msgpack frame to the inference worker. Field names are the
// wire contract with the Python side.
type Request struct {
	Op        string `msgpack:"op"`
	ModelID   string `msgpack:"model_id"`
	Device    string `msgpack:"device"`
	ImagePath string `msgpack:"image_path"`
}

// Response is the worker's reply. Depth is row-major, Width*Height values.
type Response struct {
	Status string    `msgpack:"status"`
	Error  string    `msgpack:"error,omitempty"`
	Width  int       `msgpack:"width"`
	Height int       `msgpack:"height"`
	Depth  []float32 `msgpack:"depth"`
}

func encodeRequest(req *Request) ([]byte, error) {
	payload, err := msgpack.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode estimate request: %w", err)
	}

	return payload, nil
}

func decodeResponse(payload []byte) (*Response, error) {
	resp := &Response{}
	if err := msgpack.Unmarshal(payload, resp); err != nil {
		return nil, fmt.Errorf("failed to decode worker response: %w", err)
	}

	return resp, nil
}

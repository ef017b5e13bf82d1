package types

// EstimateResponse is the answer to an estimate request. Exactly one of
// Depth and Error is set: estimation failures travel in-band next to the
// original image URL instead of as a transport error.
type EstimateResponse struct {
	Original string `json:"original" msgpack:"original"`
	Depth    string `json:"depth,omitempty" msgpack:"depth,omitempty"`
	Error    string `json:"error,omitempty" msgpack:"error,omitempty"`
}

type UploadResponse struct {
	Url string `json:"url" msgpack:"url"`
}

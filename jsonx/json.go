package jsonx

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

func Marshal(v interface{}) ([]byte, error) {
	return api.Marshal(v)
}

func MarshalIndent(v interface{}) ([]byte, error) {
	return api.MarshalIndent(v, "", "  ")
}

func Unmarshal(data []byte, v interface{}) error {
	return api.Unmarshal(data, v)
}

func NewEncoder(w io.Writer) *jsoniter.Encoder {
	return api.NewEncoder(w)
}

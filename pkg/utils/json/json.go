// Package json routes all JSON encoding through sonic so the whole
// project shares one implementation.
package json

import "github.com/bytedance/sonic"

var (
	Marshal       = sonic.Marshal
	Unmarshal     = sonic.Unmarshal
	MarshalString = sonic.MarshalString
)

// MarshalIndent renders v with two-space indentation.
func MarshalIndent(v interface{}) ([]byte, error) {
	return sonic.ConfigDefault.MarshalIndent(v, "", "  ")
}

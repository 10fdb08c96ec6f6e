// Package jsondecode decodes JSON strictly: numbers keep their precision
// and trailing garbage after the first value is rejected. Model-produced
// tool arguments go through here before execution.
package jsondecode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

func UnmarshalSafe(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("invalid json: %v", err)
	}

	var noMore interface{}
	noMoreErr := dec.Decode(&noMore)
	if noMoreErr == nil {
		return fmt.Errorf("invalid json: multiple json values found")
	}
	if noMoreErr != io.EOF {
		return fmt.Errorf("invalid json: %v", noMoreErr)
	}
	return nil
}

func UnmarshalSafeAny(data []byte) (interface{}, error) {
	var v interface{}
	if err := UnmarshalSafe(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

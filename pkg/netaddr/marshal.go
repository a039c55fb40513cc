package netaddr

import (
	"encoding/json"
	"fmt"
)

type setT interface {
	Set(s string) error
}

func marshal(v fmt.Stringer) ([]byte, error) {
	return json.Marshal(v.String())
}

func unmarshal[T setT](v T, data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}
	return v.Set(s)
}

package probe

import (
	"encoding/json"
	"fmt"
)

// Mode selects the probe frame sent to the target.
type Mode int

const (
	ModeARP Mode = iota + 1
	ModeICMP
)

var modeToStr = map[Mode]string{
	ModeARP:  "arp",
	ModeICMP: "icmp",
}

var strToMode = make(map[string]Mode)

func init() {
	for mode, str := range modeToStr {
		strToMode[str] = mode
	}
}

func (m Mode) String() string {
	return modeToStr[m]
}

func (Mode) Type() string {
	return "mode"
}

func (m *Mode) Set(s string) error {
	if mode, ok := strToMode[s]; ok {
		*m = mode
		return nil
	}
	return fmt.Errorf("invalid probe mode: %s", s)
}

func (m Mode) MarshalJSON() ([]byte, error) {
	s := m.String()
	if s == "" {
		return nil, fmt.Errorf("invalid probe mode: %d", m)
	}
	return json.Marshal(s)
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return m.Set(s)
}

package client

import (
	"encoding/json"
	"os"
)

// The last endpoint that completed a handshake is remembered across launches
// and tried first next time. Failures here are non-fatal: discovery just
// starts from the configured order again.

type persistedState struct {
	Endpoint string `json:"endpoint"`
}

func loadPreferred(path string) string {
	if path == "" {
		return ""
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var st persistedState
	if err := json.Unmarshal(raw, &st); err != nil {
		return ""
	}
	return st.Endpoint
}

func storePreferred(path, endpoint string) {
	if path == "" {
		return
	}
	raw, err := json.Marshal(persistedState{Endpoint: endpoint})
	if err != nil {
		return
	}
	_ = os.WriteFile(path, raw, 0o600)
}

package types

import "time"

// RegisteredApp represents a user-registered application record
type RegisteredApp struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Path             string `json:"path"`
	Arguments        string `json:"arguments"`
	Description      string `json:"description"`
	Enabled          bool   `json:"enabled"`
	Delay            int64  `json:"delay"` // auto-start delay in seconds
	PreventDuplicate bool   `json:"preventDuplicate"`
	AutoStart        bool   `json:"autoStart"`
}

// RegisteredAppStatus combines a registered application record with its
// live running state. The supervisor is the source of truth for the
// Running flag; the frontend must not infer it from AutoStart.
type RegisteredAppStatus struct {
	RegisteredApp
	Running   bool `json:"running"`
	Instances int  `json:"instances"`
}

// RunningInstance describes one live process tracked by the supervisor
type RunningInstance struct {
	InstanceID string    `json:"instanceId"`
	AppID      string    `json:"appId"`
	PID        int       `json:"pid"`
	StartedAt  time.Time `json:"startedAt"`
}

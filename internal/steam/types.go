package steam

import (
	"bytes"
	"encoding/json"
)

// App is one row of a discovery page from the partner app-list endpoint.
// LastModified is the revision marker used for change detection; it is
// externally supplied and only meaningful as a "differs means changed"
// signal.
type App struct {
	AppID             int64  `json:"appid"`
	Name              string `json:"name"`
	LastModified      int64  `json:"last_modified"`
	PriceChangeNumber int64  `json:"price_change_number"`
}

type appListResponse struct {
	Response struct {
		Apps            []App `json:"apps"`
		HaveMoreResults bool  `json:"have_more_results"`
		LastAppID       int64 `json:"last_appid"`
	} `json:"response"`
}

// DetailResult is one entry of the appdetails response map, keyed by the
// appid rendered as text. Entries with Success false carry no data.
type DetailResult struct {
	Success bool        `json:"success"`
	Data    *DetailData `json:"data"`
}

// DetailData is the subset of the detail payload this mirror consumes.
type DetailData struct {
	Name              string          `json:"name"`
	Type              string          `json:"type"`
	Platforms         map[string]bool `json:"platforms"`
	PCRequirements    Requirements    `json:"pc_requirements"`
	MacRequirements   Requirements    `json:"mac_requirements"`
	LinuxRequirements Requirements    `json:"linux_requirements"`
}

// Requirements carries the per-tier markup blobs for one platform. Each
// tier is independently optional.
type Requirements struct {
	Minimum     *string `json:"minimum"`
	Recommended *string `json:"recommended"`
}

// UnmarshalJSON tolerates the endpoint's habit of rendering an absent
// requirements object as an empty JSON array.
func (r *Requirements) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '[' || bytes.Equal(trimmed, []byte("null")) {
		*r = Requirements{}
		return nil
	}
	type plain Requirements
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*r = Requirements(p)
	return nil
}

package api

import (
	"strings"

	"github.com/goccy/go-json"
)

// ParseCredentials extracts sid and sls from the stored cookie blob, which is
// either a JSON object {"sid":..,"sls":..} or a "sid=..; sls=.." cookie string.
func ParseCredentials(blob string) Credentials {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return Credentials{}
	}

	if strings.HasPrefix(blob, "{") {
		var obj struct {
			SID string `json:"sid"`
			SLS string `json:"sls"`
		}
		if err := json.Unmarshal([]byte(blob), &obj); err == nil {
			return Credentials{SID: obj.SID, SLS: obj.SLS}
		}
	}

	var creds Credentials
	for _, part := range strings.Split(blob, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "sid", "sessionid":
			creds.SID = strings.TrimSpace(value)
		case "sls", "steamloginsecure":
			creds.SLS = strings.TrimSpace(value)
		}
	}
	return creds
}

// Empty reports whether neither cookie is set.
func (c Credentials) Empty() bool {
	return c.SID == "" && c.SLS == ""
}

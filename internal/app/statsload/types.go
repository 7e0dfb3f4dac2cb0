package statsload

import "encoding/json"

// Event is the Lambda payload. Every field is optional and overrides the
// matching env var for this invocation only.
type Event struct {
	Weeks     []string `json:"weeks"`      // e.g. ["1","2"]
	Positions []string `json:"positions"`  // e.g. ["QB","K"]
	Sink      string   `json:"sink"`       // stdout | postgres | dynamodb | athena
	StatsRoot string   `json:"stats_root"` // dir or s3://bucket/prefix
	Roster    string   `json:"roster_uri"` // file or s3://bucket/key
}

type Response struct {
	OK        bool     `json:"ok"`
	Weeks     []string `json:"weeks"`
	Sink      string   `json:"sink"`
	Files     int      `json:"files"`
	Rows      int      `json:"rows"`
	Matched   int      `json:"matched"`
	Unmatched int      `json:"unmatched"`
	Tuples    int      `json:"tuples"`
}

// Raw is used by the Lambda entrypoint to avoid tight coupling to the event type at the edge.
type Raw = json.RawMessage

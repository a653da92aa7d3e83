package schema

// StoreStatus describes the scan store's backend and contents, mirrored by
// the `store status` command.
type StoreStatus struct {
	Backend    string `json:"backend"`
	Connected  bool   `json:"connected"`
	EntryCount int64  `json:"entry_count"`
	OldestUnix int64  `json:"oldest_unix,omitempty"`
	NewestUnix int64  `json:"newest_unix,omitempty"`
	Location   string `json:"location,omitempty"`
}

// StoredScan is one persisted scan result row, as exposed by the store's
// export path.
type StoredScan struct {
	Key       string
	Payload   []byte
	Version   int
	Timestamp int64
}

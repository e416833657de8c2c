package metrics

// Snapshot 计数器快照
type Snapshot struct {
	Posts         int64 `json:"posts"`
	Delivered     int64 `json:"delivered"`
	Expired       int64 `json:"expired"`
	Suppressed    int64 `json:"suppressed"`
	Replays       int64 `json:"replays"`
	Registrations int64 `json:"registrations"`
	Removals      int64 `json:"removals"`
}

// Active 返回当前仍注册的观察者数量
func (s Snapshot) Active() int64 {
	return s.Registrations - s.Removals
}

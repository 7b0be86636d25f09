package models

import "time"

// Session holds the in-progress LIFF state for one LINE user, such as
// a booking draft the member has not submitted yet.
type Session struct {
	LineUserID  string                 `json:"line_user_id"`
	MemberID    int64                  `json:"member_id,omitempty"`
	CurrentStep string                 `json:"current_step,omitempty"`
	TempData    map[string]interface{} `json:"temp_data,omitempty"`
}

func (s *Session) GetInt(key string) int {
	if s.TempData == nil {
		return 0
	}
	val, ok := s.TempData[key]
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		// json.Unmarshal decodes numbers as float64.
		return int(v)
	default:
		return 0
	}
}

func (s *Session) GetString(key string) string {
	if s.TempData == nil {
		return ""
	}
	if str, ok := s.TempData[key].(string); ok {
		return str
	}
	return ""
}

func (s *Session) GetDate(key string) time.Time {
	if s.TempData == nil {
		return time.Time{}
	}
	val, ok := s.TempData[key]
	if !ok {
		return time.Time{}
	}
	switch v := val.(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			t, err = time.Parse(time.RFC3339, v)
			if err != nil {
				return time.Time{}
			}
		}
		return t
	default:
		return time.Time{}
	}
}

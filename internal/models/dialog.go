package models

// DialogState holds the per-chat conversation position and scratch data for
// the currently open page or dialog. Data round-trips through JSON when the
// redis repository is the backing store, so numeric values may come back as
// float64; the getters normalize that.
type DialogState struct {
	ChatID      int64
	CurrentStep string
	Data        map[string]interface{}
}

func (s *DialogState) GetInt64(key string) int64 {
	if s.Data == nil {
		return 0
	}
	val, ok := s.Data[key]
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case int:
		return int64(v)
	default:
		return 0
	}
}

func (s *DialogState) GetInt(key string) int {
	return int(s.GetInt64(key))
}

func (s *DialogState) GetString(key string) string {
	if s.Data == nil {
		return ""
	}
	val, ok := s.Data[key]
	if !ok {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

// Set stores a value, allocating the scratch map on first use.
func (s *DialogState) Set(key string, value interface{}) {
	if s.Data == nil {
		s.Data = make(map[string]interface{})
	}
	s.Data[key] = value
}

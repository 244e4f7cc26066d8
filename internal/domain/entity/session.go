package entity

// Session фотографии, накопленные пользователем для одной проверки.
type Session struct {
	Before [][]byte
	After  [][]byte
}

// Ready сообщает, что есть хотя бы по одному снимку "до" и "после".
func (s *Session) Ready() bool {
	return s != nil && len(s.Before) > 0 && len(s.After) > 0
}

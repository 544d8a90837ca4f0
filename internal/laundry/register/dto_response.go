package register

type EntryListResponseDto struct {
	Entries []Entry `json:"entries"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	Size    int     `json:"size"`
}

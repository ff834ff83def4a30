package session

type LoadRequest struct {
	Source string `json:"source" binding:"required"`
	Dest1  string `json:"dest1" binding:"required"`
	Dest2  string `json:"dest2" binding:"required"`
}

type SortRequest struct {
	Target int `json:"target" binding:"required"`
}

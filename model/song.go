package model

// Song 表示专辑草稿中的一首歌曲及其生命周期状态
type Song struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HasAudio    bool   `json:"hasAudio"`
	IpfsHash    string `json:"ipfsHash,omitempty"`
	IsRecording bool   `json:"isRecording"`
	IsUploading bool   `json:"isUploading"`
	Uploaded    bool   `json:"uploaded"`
	Elapsed     int    `json:"elapsed"` // 录音已进行的秒数
}

// SongEntry 清单中的歌曲条目
type SongEntry struct {
	Name     string `json:"name"`
	IpfsHash string `json:"ipfsHash"`
}

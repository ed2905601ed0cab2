package domain

type Review struct {
	Text string `json:"text"`
}

type Source string

const (
	SourceTSV  Source = "tsv"
	SourceFeed Source = "feed"
)

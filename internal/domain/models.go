package domain

// Domain contains core models shared across the monitor pipeline.

// Article is a single news entry extracted from a feed. Values are never
// mutated after construction; dedupe identity is the cleaned Title.
type Article struct {
	Title       string
	Link        string
	PubDate     string
	Source      string
	Description string
	ImageURL    string
}

// RunReport summarizes a single monitoring run.
type RunReport struct {
	DigestArticles int
	DigestSent     bool
	KeywordsTried  int
	AlertsSent     int
	AlertsFailed   int
}

package types

// Stream identifies one of the five independent evidence streams the system
// aggregates signals from.
type Stream string

// Evidence stream constants.
const (
	StreamPaper   Stream = "paper"   // Scientific publications
	StreamPatent  Stream = "patent"  // Granted patents
	StreamSocial  Stream = "social"  // Social discussion (Reddit)
	StreamNews    Stream = "news"    // News coverage
	StreamFinance Stream = "finance" // Financial market data
)

// AllStreams lists every evidence stream in presentation order.
var AllStreams = []Stream{StreamPaper, StreamPatent, StreamSocial, StreamNews, StreamFinance}

// Paper is a single scientific publication record. Attributes not supplied
// by the collector are left at their zero value with the matching *Valid-style
// pointer semantics: a nil Year or CitationCount means "missing", never zero.
type Paper struct {
	PaperID         string   `json:"paper_id"`                  // Upstream identifier (e.g. Semantic Scholar ID)
	Title           string   `json:"title"`                     // Paper title
	Year            *int     `json:"year,omitempty"`            // Publication year (nil when unknown)
	CitationCount   *int     `json:"citation_count,omitempty"`  // Total citations (nil when unknown)
	PublicationDate string   `json:"publication_date,omitempty"` // YYYY-MM-DD when known
	Abstract        string   `json:"abstract,omitempty"`        // Abstract text
	Authors         []string `json:"authors,omitempty"`         // Author display names
	Venue           string   `json:"venue,omitempty"`           // Journal/conference name
	OpenAccessPDF   string   `json:"open_access_pdf,omitempty"` // URL to open-access PDF
}

// PatentAssignee is one assignee entry attached to a patent. Either the
// organization name or the individual name fields are populated.
type PatentAssignee struct {
	Organization        string `json:"assignee_organization,omitempty"`
	IndividualFirstName string `json:"assignee_individual_name_first,omitempty"`
	IndividualLastName  string `json:"assignee_individual_name_last,omitempty"`
	Country             string `json:"assignee_country,omitempty"`
}

// Patent is a single granted patent record.
type Patent struct {
	PatentID          string           `json:"patent_id"`               // Patent number
	Title             string           `json:"patent_title"`            // Patent title
	Abstract          string           `json:"patent_abstract,omitempty"`
	Date              string           `json:"patent_date,omitempty"`   // YYYY-MM-DD grant date
	Year              *int             `json:"patent_year,omitempty"`   // Grant year (nil when unknown)
	Type              string           `json:"patent_type,omitempty"`   // "utility", "design", ...
	BackwardCitations *int             `json:"num_us_patents_cited,omitempty"`
	ForwardCitations  *int             `json:"num_times_cited_by_us_patents,omitempty"`
	Assignees         []PatentAssignee `json:"assignees,omitempty"`
}

// SocialPost is a single social discussion record (Reddit post).
type SocialPost struct {
	PostID      string `json:"post_id"`
	Title       string `json:"title"`
	Body        string `json:"selftext,omitempty"`      // Self-post body (empty for link posts)
	Score       *int   `json:"score,omitempty"`         // Upvotes minus downvotes (nil when unknown)
	NumComments *int   `json:"num_comments,omitempty"`  // Comment count (nil when unknown)
	Author      string `json:"author,omitempty"`        // Username, may be "[deleted]"
	Subreddit   string `json:"subreddit,omitempty"`
	CreatedUTC  int64  `json:"created_utc,omitempty"`   // Unix timestamp, 0 when unknown
	Permalink   string `json:"permalink,omitempty"`
	URL         string `json:"url,omitempty"`           // Link target (for link posts)
	PostType    string `json:"post_type,omitempty"`     // "self" or "link"
}

// NewsArticle is a single news coverage record.
type NewsArticle struct {
	ArticleID   string `json:"article_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at,omitempty"` // ISO 8601
	Author      string `json:"author,omitempty"`
	SourceID    string `json:"source_id,omitempty"`   // Upstream source identifier
	SourceName  string `json:"source_name,omitempty"` // Display name of the outlet
}

// PriceBar is one daily OHLCV bar for a ticker.
type PriceBar struct {
	Ticker     string   `json:"ticker"`
	TickerType string   `json:"ticker_type,omitempty"` // "stock" or "index"
	Date       string   `json:"date"`                  // YYYY-MM-DD
	Open       *float64 `json:"open,omitempty"`
	High       *float64 `json:"high,omitempty"`
	Low        *float64 `json:"low,omitempty"`
	Close      *float64 `json:"close,omitempty"`
	AdjClose   *float64 `json:"adj_close,omitempty"` // Split/dividend adjusted close
	Volume     *int64   `json:"volume,omitempty"`
}

// StockInfo carries fundamental data for one ticker, used alongside price
// bars in the finance stream.
type StockInfo struct {
	Ticker    string   `json:"ticker"`
	Name      string   `json:"name,omitempty"`
	Sector    string   `json:"sector,omitempty"`
	Industry  string   `json:"industry,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty"`
	PERatio   *float64 `json:"pe_ratio,omitempty"`
}

// Technology is a catalog entry describing what to collect and analyze.
type Technology struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`       // Search terms for collectors
	ExcludedTerms []string `json:"excluded_terms,omitempty"` // Terms that disqualify a record
	Tickers       []string `json:"tickers,omitempty"`        // Tickers tracked for the finance stream
}

package reputation

// AnalysisStats holds the per-verdict engine counters attached to
// every analyzed object.
type AnalysisStats struct {
	Harmless   int `json:"harmless"`
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Undetected int `json:"undetected"`
	Timeout    int `json:"timeout"`
}

// Detections returns the number of engines that flagged the object.
func (s AnalysisStats) Detections() int {
	return s.Malicious + s.Suspicious
}

// Total returns the number of engines that produced any verdict.
func (s AnalysisStats) Total() int {
	return s.Harmless + s.Malicious + s.Suspicious + s.Undetected + s.Timeout
}

// DetectionRatio returns the detections share in percent, zero when no
// engine reported.
func (s AnalysisStats) DetectionRatio() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Detections()) / float64(total) * 100
}

// VoteStats holds the community vote counters.
type VoteStats struct {
	Harmless  int `json:"harmless"`
	Malicious int `json:"malicious"`
}

// Attributes is the union of the object attributes this tool reads.
// The API's objects are polymorphic; fields missing from a given
// object type simply decode to their zero values.
type Attributes struct {
	// Shared reputation fields.
	LastAnalysisStats AnalysisStats     `json:"last_analysis_stats"`
	Reputation        int               `json:"reputation"`
	TotalVotes        VoteStats         `json:"total_votes"`
	LastAnalysisDate  int64             `json:"last_analysis_date"`
	Categories        map[string]string `json:"categories"`

	// Domain fields. CreationDate is a Unix timestamp from WHOIS.
	CreationDate int64  `json:"creation_date"`
	Registrar    string `json:"registrar"`

	// IP address fields.
	Country string `json:"country"`
	ASOwner string `json:"as_owner"`
	ASN     int    `json:"asn"`

	// URL fields.
	Title        string `json:"title"`
	LastFinalURL string `json:"last_final_url"`

	// File fields.
	MeaningfulName string `json:"meaningful_name"`
	TypeTag        string `json:"type_tag"`
	Size           int64  `json:"size"`
	SHA256         string `json:"sha256"`

	// Comment fields.
	Text string `json:"text"`
	Date int64  `json:"date"`

	// Resolution fields.
	HostName  string `json:"host_name"`
	IPAddress string `json:"ip_address"`
}

// Object is one API object: a file, URL, domain, IP address, comment,
// or resolution.
type Object struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Attributes Attributes `json:"attributes"`
}

// Report is the envelope of a single-object response.
type Report struct {
	Data Object `json:"data"`
}

// Stats returns the engine verdict counters of the reported object.
func (r *Report) Stats() AnalysisStats {
	return r.Data.Attributes.LastAnalysisStats
}

// Collection is the envelope of a multi-object response.
type Collection struct {
	Data []Object `json:"data"`
	Meta struct {
		Count  int    `json:"count"`
		Cursor string `json:"cursor"`
	} `json:"meta"`
}

// Submission is the envelope returned by a scan submission. The data
// object's ID is an analysis ID, not an object ID.
type Submission struct {
	Data struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"data"`
}

// AnalysisID returns the ID to poll for scan completion.
func (s *Submission) AnalysisID() string {
	return s.Data.ID
}

// AnalysisReport is the envelope of an asynchronous analysis poll.
type AnalysisReport struct {
	Data struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			Status string        `json:"status"`
			Stats  AnalysisStats `json:"stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// Completed reports whether the analysis has finished.
func (a *AnalysisReport) Completed() bool {
	return a.Data.Attributes.Status == "completed"
}

// Stats returns the verdict counters of a completed analysis.
func (a *AnalysisReport) Stats() AnalysisStats {
	return a.Data.Attributes.Stats
}

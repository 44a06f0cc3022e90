package output

// DiagnosticOutput is one diagnostic in JSON output.
type DiagnosticOutput struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// IntentCount is the per-intent size of a compiled corpus.
type IntentCount struct {
	Intent     string `json:"intent"`
	Templates  int    `json:"templates"`
	Utterances int    `json:"utterances"`
	Unique     int    `json:"unique"`
}

// CheckOutput is the JSON result of the check command.
type CheckOutput struct {
	Grammar     string             `json:"grammar"`
	Status      string             `json:"status"`
	Errors      int                `json:"errors"`
	Warnings    int                `json:"warnings"`
	Intents     []IntentCount      `json:"intents"`
	Diagnostics []DiagnosticOutput `json:"diagnostics"`
}

// NonterminalStats describes one nonterminal's branching.
type NonterminalStats struct {
	Name         string `json:"name"`
	Alternatives int    `json:"alternatives"`
	Expansions   int    `json:"expansions"`
	Level        int    `json:"level"`
	UsedBy       int    `json:"used_by"`
}

// StatsOutput is the JSON result of the stats command.
type StatsOutput struct {
	Grammar      string             `json:"grammar"`
	Intents      []IntentCount      `json:"intents"`
	Nonterminals []NonterminalStats `json:"nonterminals"`
	Unused       []string           `json:"unused"`
	Total        int                `json:"total"`
}

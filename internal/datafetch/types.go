package datafetch

// yahooChartResponse mirrors the Yahoo Finance v8 chart payload, reduced to
// the fields the fetcher reads.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooChartError `json:"error"`
	} `json:"chart"`
}

type yahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// blockchainChartResponse mirrors the blockchain.info charts payload.
type blockchainChartResponse struct {
	Status string `json:"status"`
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	Values []struct {
		X int64   `json:"x"`
		Y float64 `json:"y"`
	} `json:"values"`
}

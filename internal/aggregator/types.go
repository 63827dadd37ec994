package aggregator

import "encoding/json"

// Route is one priced path returned by the quote endpoint. Everything past
// the fields we read is carried along verbatim so the swap build request
// round-trips whatever the aggregator needs.
type Route struct {
	InAmount       string          `json:"inAmount"`
	OutAmount      string          `json:"outAmount"`
	PriceImpactPct json.Number     `json:"priceImpactPct,omitempty"`
	Raw            json.RawMessage `json:"-"`
}

func (r *Route) UnmarshalJSON(data []byte) error {
	type alias Route
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = Route(decoded)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (r Route) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type alias Route
	return json.Marshal(alias(r))
}

type QuoteResponse struct {
	Routes []Route `json:"routes"`
}

type SwapRequest struct {
	Route         *Route `json:"route"`
	UserPublicKey string `json:"userPublicKey"`
}

type SwapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

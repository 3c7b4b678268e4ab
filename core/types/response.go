package types

// Attribute is a single key/value pair attached to a message response.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response describes the outcome of a successfully applied message. The
// attribute list preserves insertion order so external indexers observe a
// stable layout.
type Response struct {
	Attributes []Attribute `json:"attributes"`
}

// NewResponse builds a response seeded with the performed action.
func NewResponse(action string) *Response {
	return &Response{Attributes: []Attribute{{Key: "action", Value: action}}}
}

// Add appends an attribute and returns the response for chaining.
func (r *Response) Add(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// Attribute returns the value stored under the given key, if present.
func (r *Response) Attribute(key string) (string, bool) {
	for _, attr := range r.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

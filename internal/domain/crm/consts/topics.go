package consts

// Event types carried in lead event payloads
const (
	EventLeadCreated = "lead.created"
)

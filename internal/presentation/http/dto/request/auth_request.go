package request

// PairTerminalRequest exchanges the pairing code for a terminal token
type PairTerminalRequest struct {
	PairingCode  string `json:"pairing_code" binding:"required,min=4,max=64"`
	TerminalName string `json:"terminal_name" binding:"max=100"`
}

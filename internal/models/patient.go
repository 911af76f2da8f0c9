package models

// PatientRecord is one synthetic chest-pain attendance. The generator fills
// the clinical fields; the protocol evaluator appends the disposition ones.
type PatientRecord struct {
	ID          int    `json:"patientId"`
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Condition   string `json:"condition"`
	HeartScore  int    `json:"heartScore"`
	T0          int    `json:"t0"` // presentation troponin, ng/L
	T1          int    `json:"t1"` // retest troponin, always >= T0
	Outcome     string `json:"outcome,omitempty"`
	Action      string `json:"action,omitempty"`
	WaitMinutes int    `json:"waitMinutes"`
	BedsBlocked int    `json:"bedsBlocked"`
}

// Delta is the troponin rise between the two samples.
func (p PatientRecord) Delta() int {
	return p.T1 - p.T0
}

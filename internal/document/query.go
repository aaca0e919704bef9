package document

// DateLayout is the calendar date format of LeaveRequest.Date.
const DateLayout = "2006-01-02"

// Counts summarizes the rosters for the dashboard.
type Counts struct {
	Leave      int `json:"guruIzin"`
	LeaveToday int `json:"guruIzinHariIni"`
	Pending    int `json:"pending"`
	Duty       int `json:"guruPiket"`
	Agenda     int `json:"agenda"`
}

// LeaveOn returns the leave requests whose date equals date exactly.
// The result is never nil.
func (d *Document) LeaveOn(date string) []LeaveRequest {
	out := []LeaveRequest{}
	for _, lr := range d.Leave {
		if lr.Date == date {
			out = append(out, lr)
		}
	}
	return out
}

// PendingCount returns the number of leave requests awaiting a decision.
func (d *Document) PendingCount() int {
	n := 0
	for _, lr := range d.Leave {
		if lr.Status == StatusPending {
			n++
		}
	}
	return n
}

// Counts returns roster sizes, with today's leave counted against today.
func (d *Document) Counts(today string) Counts {
	return Counts{
		Leave:      len(d.Leave),
		LeaveToday: len(d.LeaveOn(today)),
		Pending:    d.PendingCount(),
		Duty:       len(d.Duty),
		Agenda:     len(d.Agenda),
	}
}

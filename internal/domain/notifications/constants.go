package notifications

const (
	TypeLeaveSubmitted   = "leave_submitted"
	TypeLeaveApproved    = "leave_approved"
	TypeLeaveRejected    = "leave_rejected"
	TypeContractReminder = "contract_reminder"
	TypeContractCritical = "contract_critical"
)

// ReminderWindowDays is how close to the contract end the first reminder goes
// out.
const ReminderWindowDays = 40

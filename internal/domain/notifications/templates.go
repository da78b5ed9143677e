package notifications

import (
	"bytes"
	"fmt"
	"text/template"
)

type messageTemplate struct {
	subject string
	body    *template.Template
}

var funcs = template.FuncMap{
	"days": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

func mustTemplate(name, subject, body string) messageTemplate {
	return messageTemplate{subject: subject, body: template.Must(template.New(name).Funcs(funcs).Parse(body))}
}

var templates = map[string]messageTemplate{
	TypeLeaveSubmitted: mustTemplate(TypeLeaveSubmitted, "New Leave Request / طلب إجازة جديد", `Dear {{.ManagerNameEN}},

{{.EmployeeNameEN}} ({{.EmployeeID}}) has requested {{.Duration}} day(s) of {{.VacationType}} leave from {{.Start}} to {{.End}}.
Please review it in the approvals queue.

عزيزي {{.ManagerNameAR}}،

قدم {{.EmployeeNameAR}} ({{.EmployeeID}}) طلب إجازة ({{.VacationType}}) لمدة {{.Duration}} يوم من {{.Start}} إلى {{.End}}.
`),
	TypeLeaveApproved: mustTemplate(TypeLeaveApproved, "Leave Request Approved / تمت الموافقة على طلب الإجازة", `Dear {{.EmployeeNameEN}},

Your {{.VacationType}} leave from {{.Start}} to {{.End}} ({{.Duration}} day(s)) has been approved.
Remaining vacation balance: {{days .Remaining}} day(s).

عزيزي {{.EmployeeNameAR}}،

تمت الموافقة على إجازتك ({{.VacationType}}) من {{.Start}} إلى {{.End}} لمدة {{.Duration}} يوم.
الرصيد المتبقي: {{days .Remaining}} يوم.
`),
	TypeLeaveRejected: mustTemplate(TypeLeaveRejected, "Leave Request Rejected / تم رفض طلب الإجازة", `Dear {{.EmployeeNameEN}},

Your {{.VacationType}} leave from {{.Start}} to {{.End}} has been rejected.
Reason: {{.Reason}}

عزيزي {{.EmployeeNameAR}}،

تم رفض طلب إجازتك ({{.VacationType}}) من {{.Start}} إلى {{.End}}.
السبب: {{.Reason}}
`),
	TypeContractReminder: mustTemplate(TypeContractReminder, "Contract End Reminder / تذكير بانتهاء العقد", `Dear {{.EmployeeNameEN}},

Your contract ends on {{.ContractEnd}}, in {{.DaysRemaining}} day(s).
Your vacation balance is {{days .Remaining}} day(s). Please plan your leave before the contract ends.

عزيزي {{.EmployeeNameAR}}،

ينتهي عقدك في {{.ContractEnd}} بعد {{.DaysRemaining}} يوم.
رصيد إجازاتك {{days .Remaining}} يوم.
`),
	TypeContractCritical: mustTemplate(TypeContractCritical, "CRITICAL: Contract Ending / تحذير حرج: انتهاء العقد", `Dear {{.EmployeeNameEN}},

Your contract ends on {{.ContractEnd}}, in {{.DaysRemaining}} day(s), and your vacation balance of {{days .Remaining}} day(s) now matches the days left.
Unused balance is forfeited when the contract ends.

عزيزي {{.EmployeeNameAR}}،

ينتهي عقدك في {{.ContractEnd}} بعد {{.DaysRemaining}} يوم، ورصيد إجازاتك {{days .Remaining}} يوم يساوي الأيام المتبقية.
`),
}

// templateData carries every field a template may reference.
type templateData struct {
	EmployeeID     string
	EmployeeNameEN string
	EmployeeNameAR string
	ManagerNameEN  string
	ManagerNameAR  string
	VacationType   string
	Start          string
	End            string
	Duration       int
	Reason         string
	Remaining      float64
	ContractEnd    string
	DaysRemaining  int
}

func render(kind string, data templateData) (string, string, error) {
	tpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("no template for %q", kind)
	}
	var buf bytes.Buffer
	if err := tpl.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", kind, err)
	}
	return tpl.subject, buf.String(), nil
}

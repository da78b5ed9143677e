package report

import (
	"time"

	"leaveportal/internal/domain/leave"
	"leaveportal/internal/platform/calendar"
)

type labels struct {
	Title     string
	Employee  string
	Period    string
	Generated string
	Earned    string
	Used      string
	Available string
	Taken     string
	Filed     string
	Team      string
	Name      string
	Position  string
	Days      string
	Balance   string
	Status    string
	Present   string
	OnLeave   string
	LeaveType string
	From      string
	To        string
	Types     map[leave.VacationType]string
}

var labelSets = map[string]labels{
	"en": {
		Title:     "Team Leave Report",
		Employee:  "Employee",
		Period:    "Period",
		Generated: "Generated",
		Earned:    "Earned",
		Used:      "Used",
		Available: "Available",
		Taken:     "Days taken in period",
		Filed:     "Requests in period",
		Team:      "Team",
		Name:      "Name",
		Position:  "Position",
		Days:      "Days Taken",
		Balance:   "Balance",
		Status:    "Status",
		Present:   "Present",
		OnLeave:   "On Leave",
		LeaveType: "Type",
		From:      "From",
		To:        "To",
		Types: map[leave.VacationType]string{
			leave.VacationAnnual:    "Annual",
			leave.VacationSick:      "Sick",
			leave.VacationEmergency: "Emergency",
			leave.VacationExams:     "Exams",
		},
	},
	"ar": {
		Title:     "تقرير إجازات الفريق",
		Employee:  "الموظف",
		Period:    "الفترة",
		Generated: "تاريخ الإنشاء",
		Earned:    "المكتسب",
		Used:      "المستخدم",
		Available: "المتاح",
		Taken:     "الأيام المأخوذة في الفترة",
		Filed:     "الطلبات في الفترة",
		Team:      "الفريق",
		Name:      "الاسم",
		Position:  "المسمى الوظيفي",
		Days:      "الأيام المأخوذة",
		Balance:   "الرصيد",
		Status:    "الحالة",
		Present:   "حاضر",
		OnLeave:   "في إجازة",
		LeaveType: "النوع",
		From:      "من",
		To:        "إلى",
		Types: map[leave.VacationType]string{
			leave.VacationAnnual:    "سنوية",
			leave.VacationSick:      "مرضية",
			leave.VacationEmergency: "طارئة",
			leave.VacationExams:     "اختبارات",
		},
	},
}

func labelsFor(lang string) labels {
	if l, ok := labelSets[lang]; ok {
		return l
	}
	return labelSets["en"]
}

func (r Report) names(m MemberStats) (string, string) {
	if r.Language == "ar" {
		return m.NameAR, m.PositionAR
	}
	return m.NameEN, m.PositionEN
}

func (r Report) status(l labels, m MemberStats) string {
	if m.OnLeave {
		return l.OnLeave
	}
	return l.Present
}

func (r Report) date(lang string, t time.Time) string {
	return calendar.Format(t, r.DateSystem, lang)
}

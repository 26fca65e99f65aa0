package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/study-planner-api/internal/models"
)

// The text report layout is a consumed contract: yyyy-MM-dd dates,
// tab-separated table columns, fixed section headers. Downstream tooling
// parses these documents, so the templates below must not drift.

const reportDateLayout = "2006-01-02"

func reportDate(t time.Time) string {
	return t.Format(reportDateLayout)
}

// RenderTermReport produces the flat text document for one term: header,
// course table, assessment table. An empty term renders header rows with no
// data rows.
func RenderTermReport(term models.Term, snapshot models.Snapshot, now time.Time) []string {
	lines := []string{
		"TERM REPORT",
		fmt.Sprintf("Term:\t%s", term.Name),
		fmt.Sprintf("Dates:\t%s - %s", reportDate(term.StartDate), reportDate(term.EndDate)),
		fmt.Sprintf("Generated:\t%s", reportDate(now)),
		"",
		"COURSES",
		"Number\tTitle\tStatus\tStart\tEnd\tCredits\tCompletion",
	}

	courses := snapshot.CoursesByTerm[term.ID]
	for _, course := range courses {
		assessments := snapshot.AssessmentsByCourse[course.ID]
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%d\t%s",
			course.CourseNumber,
			course.Title,
			course.Status,
			reportDate(course.StartDate),
			reportDate(course.EndDate),
			course.CreditHours,
			formatPercent(course.CompletionPercent(assessments)),
		))
	}

	lines = append(lines, "", "ASSESSMENTS", "Course\tName\tType\tStatus\tDue\tScore")
	for _, row := range assessmentRows(snapshot) {
		lines = append(lines, row)
	}
	return lines
}

// RenderProgressReport produces the owner's overall progress document:
// summary block plus a per-term breakdown table.
func RenderProgressReport(snapshot models.Snapshot, now time.Time, horizon time.Duration) []string {
	stats := ComputeProgress(snapshot, now, horizon)
	horizonDays := int(horizon.Hours() / 24)

	lines := []string{
		"PROGRESS REPORT",
		fmt.Sprintf("Generated:\t%s", reportDate(now)),
		fmt.Sprintf("Terms:\t%d", stats.TotalTerms),
		fmt.Sprintf("Courses:\t%d", stats.TotalCourses),
		fmt.Sprintf("Assessments:\t%d", stats.TotalAssessments),
		fmt.Sprintf("Completed:\t%d", stats.CompletedAssessments),
		fmt.Sprintf("Overdue:\t%d", stats.OverdueAssessments),
		fmt.Sprintf("Upcoming (%d days):\t%d", horizonDays, stats.UpcomingAssessments),
		fmt.Sprintf("Completion rate:\t%s", formatPercent(stats.CompletionRate)),
		fmt.Sprintf("Average score:\t%.1f", stats.AverageScore),
		"",
		"BY TERM",
		"Term\tDates\tCourses\tAssessments\tCompleted\tCompletion",
	}

	for _, term := range snapshot.Terms {
		sub := models.Snapshot{
			Terms:               []models.Term{term},
			CoursesByTerm:       snapshot.CoursesByTerm,
			AssessmentsByCourse: snapshot.AssessmentsByCourse,
		}
		termStats := ComputeProgress(sub, now, horizon)
		lines = append(lines, fmt.Sprintf("%s\t%s - %s\t%d\t%d\t%d\t%s",
			term.Name,
			reportDate(term.StartDate),
			reportDate(term.EndDate),
			termStats.TotalCourses,
			termStats.TotalAssessments,
			termStats.CompletedAssessments,
			formatPercent(termStats.CompletionRate),
		))
	}
	return lines
}

// RenderAssessmentsReport produces the full assessment listing for an owner:
// summary counts plus every assessment sorted by due date.
func RenderAssessmentsReport(snapshot models.Snapshot, now time.Time, horizon time.Duration) []string {
	stats := ComputeProgress(snapshot, now, horizon)

	lines := []string{
		"ASSESSMENTS REPORT",
		fmt.Sprintf("Generated:\t%s", reportDate(now)),
		fmt.Sprintf("Total:\t%d", stats.TotalAssessments),
		fmt.Sprintf("Completed:\t%d", stats.CompletedAssessments),
		fmt.Sprintf("Overdue:\t%d", stats.OverdueAssessments),
		"",
		"BY TYPE",
		"Type\tCount\tCompleted",
	}
	for _, group := range stats.ByType {
		lines = append(lines, fmt.Sprintf("%s\t%d\t%d", group.Type, group.Count, group.Completed))
	}

	lines = append(lines, "", "BY STATUS", "Status\tCount")
	for _, group := range stats.ByStatus {
		lines = append(lines, fmt.Sprintf("%s\t%d", group.Status, group.Count))
	}

	lines = append(lines, "", "ASSESSMENTS", "Course\tName\tType\tStatus\tDue\tScore")
	for _, row := range assessmentRows(snapshot) {
		lines = append(lines, row)
	}
	return lines
}

// assessmentRows lists every assessment as a table row sorted by due date,
// prefixed with its course number.
func assessmentRows(snapshot models.Snapshot) []string {
	numberByCourse := make(map[string]string)
	for _, course := range snapshot.Courses() {
		numberByCourse[course.ID] = course.CourseNumber
	}

	assessments := snapshot.Assessments()
	sort.SliceStable(assessments, func(i, j int) bool {
		return assessments[i].DueDate.Before(assessments[j].DueDate)
	})

	rows := make([]string, 0, len(assessments))
	for _, a := range assessments {
		rows = append(rows, fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s",
			numberByCourse[a.CourseID],
			a.Name,
			a.Type,
			a.Status,
			reportDate(a.DueDate),
			formatScore(a.Score, a.MaxPoints),
		))
	}
	return rows
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func formatScore(score *float64, maxPoints int) string {
	if score == nil {
		return "-"
	}
	s := fmt.Sprintf("%.1f", *score)
	s = strings.TrimSuffix(s, ".0")
	return fmt.Sprintf("%s/%d", s, maxPoints)
}

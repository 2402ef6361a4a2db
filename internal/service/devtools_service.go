package service

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/internal/repository"
)

//go:embed massdata.yaml
var massDataYAML []byte

type DevToolsService struct {
	repos     repository.Repositories
	txManager repository.TxManager
	tables    repository.Tables
	logger    *zap.Logger
}

func NewDevToolsService(repos repository.Repositories, txManager repository.TxManager, tables repository.Tables, logger *zap.Logger) *DevToolsService {
	return &DevToolsService{
		repos:     repos,
		txManager: txManager,
		tables:    tables,
		logger:    logger,
	}
}

// TableContents returns every record of one of the configured tables.
func (s *DevToolsService) TableContents(ctx context.Context, table string) (any, error) {
	switch table {
	case s.tables.Courses:
		return s.repos.Courses.ListAll(ctx)
	case s.tables.DegreeRequirements:
		return s.repos.Rules.ListAll(ctx)
	case s.tables.Students:
		return s.repos.Students.ListAll(ctx)
	default:
		return nil, fmt.Errorf("%w: table %q", ErrNotFound, table)
	}
}

type MassDataResult struct {
	Courses  int `json:"courses"`
	Rules    int `json:"rules"`
	Students int `json:"students"`
}

func (r MassDataResult) Message() string {
	return fmt.Sprintf("Successfully seeded %d courses, %d degree rules and %d students.", r.Courses, r.Rules, r.Students)
}

// GenerateMassData seeds a multi-major catalog, its degree rules and demo
// students in one transaction. Running it again overwrites the same keys.
func (s *DevToolsService) GenerateMassData(ctx context.Context) (MassDataResult, error) {
	data, err := LoadMassData()
	if err != nil {
		return MassDataResult{}, err
	}

	err = s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Courses.UpsertMany(ctx, data.Courses); err != nil {
			return err
		}
		for _, rule := range data.Rules {
			if err := repos.Rules.Upsert(ctx, rule); err != nil {
				return fmt.Errorf("upsert rule %s/%s: %w", rule.MajorCode, rule.RequirementType, err)
			}
		}
		for _, student := range data.Students {
			if err := repos.Students.Upsert(ctx, student); err != nil {
				return fmt.Errorf("upsert student %d: %w", student.StudentID, err)
			}
		}
		return nil
	})
	if err != nil {
		return MassDataResult{}, err
	}

	result := MassDataResult{
		Courses:  len(data.Courses),
		Rules:    len(data.Rules),
		Students: len(data.Students),
	}
	s.logger.Info("mass data generated",
		zap.Int("courses", result.Courses),
		zap.Int("rules", result.Rules),
		zap.Int("students", result.Students),
	)
	return result, nil
}

type MassData struct {
	Courses  []domain.Course
	Rules    []domain.RequirementRule
	Students []domain.Student
}

type massDataFile struct {
	Courses []struct {
		Subject string   `yaml:"subject"`
		Number  int      `yaml:"number"`
		Name    string   `yaml:"name"`
		Credits int      `yaml:"credits"`
		Prereqs []string `yaml:"prereqs"`
	} `yaml:"courses"`
	Rules []struct {
		Major        string   `yaml:"major"`
		Type         string   `yaml:"type"`
		Total        int      `yaml:"total"`
		Courses      []string `yaml:"courses"`
		MinCredits   int      `yaml:"minCredits"`
		Allowed      []string `yaml:"allowed"`
		Restrictions []string `yaml:"restrictions"`
	} `yaml:"rules"`
	Students []struct {
		ID        int      `yaml:"id"`
		First     string   `yaml:"first"`
		Last      string   `yaml:"last"`
		Major     []string `yaml:"major"`
		Completed []struct {
			Course string  `yaml:"course"`
			Grade  float64 `yaml:"grade"`
		} `yaml:"completed"`
		Overrides []struct {
			SubThis      string   `yaml:"subThis"`
			SubFor       []string `yaml:"subFor"`
			ApprovedBy   string   `yaml:"approvedBy"`
			ApprovedDate string   `yaml:"approvedDate"`
		} `yaml:"overrides"`
	} `yaml:"students"`
}

// LoadMassData decodes the embedded seed data set.
func LoadMassData() (MassData, error) {
	var file massDataFile
	if err := yaml.Unmarshal(massDataYAML, &file); err != nil {
		return MassData{}, fmt.Errorf("decode mass data: %w", err)
	}

	var data MassData
	for i, c := range file.Courses {
		prereqs, err := parseRefs(c.Prereqs)
		if err != nil {
			return MassData{}, err
		}
		data.Courses = append(data.Courses, domain.Course{
			Subject:       c.Subject,
			CourseNumber:  c.Number,
			Name:          c.Name,
			Credits:       c.Credits,
			Prerequisites: prereqs,
			Schedule:      seedSchedule(i),
			Instructor:    "Staff",
		})
	}

	for _, r := range file.Rules {
		var rule domain.RequirementRule
		if len(r.Courses) > 0 {
			refs, err := parseRefs(r.Courses)
			if err != nil {
				return MassData{}, err
			}
			rule = domain.NewCourseListRule(r.Major, r.Type, refs...)
		} else {
			rule = domain.NewCreditThresholdRule(r.Major, r.Type, domain.CreditThreshold{
				MinCredits:      r.MinCredits,
				AllowedSubjects: r.Allowed,
				Restrictions:    r.Restrictions,
			})
		}
		rule.TotalCreditsRequired = r.Total
		data.Rules = append(data.Rules, rule)
	}

	for _, st := range file.Students {
		student := domain.Student{
			StudentID:        st.ID,
			FirstName:        st.First,
			LastName:         st.Last,
			Major:            st.Major,
			CompletedCourses: []domain.CompletedCourse{},
		}
		for _, c := range st.Completed {
			ref, err := domain.ParseCourseRef(c.Course)
			if err != nil {
				return MassData{}, err
			}
			student.CompletedCourses = append(student.CompletedCourses, domain.CompletedCourse{
				Subject:      ref.Subject,
				CourseNumber: ref.CourseNumber,
				Grade:        c.Grade,
			})
		}
		for _, o := range st.Overrides {
			subThis, err := domain.ParseCourseRef(o.SubThis)
			if err != nil {
				return MassData{}, err
			}
			subFor, err := parseRefs(o.SubFor)
			if err != nil {
				return MassData{}, err
			}
			student.Overrides = append(student.Overrides, domain.Override{
				SubThis:      subThis,
				SubFor:       subFor,
				ApprovedBy:   o.ApprovedBy,
				ApprovedDate: o.ApprovedDate,
			})
		}
		data.Students = append(data.Students, student)
	}

	return data, nil
}

func parseRefs(values []string) ([]domain.CourseRef, error) {
	if len(values) == 0 {
		return nil, nil
	}
	refs := make([]domain.CourseRef, 0, len(values))
	for _, value := range values {
		ref, err := domain.ParseCourseRef(value)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

var (
	seedDays      = []string{"MWF", "TR", "MW", "M", "T", "W", "R", "F"}
	seedStarts    = []string{"08:00", "09:30", "11:00", "13:00", "14:30", "16:00"}
	seedDurations = []int{50, 75, 110}
)

// seedSchedule spreads seeded courses over the week without randomness so
// repeated seeding is stable.
func seedSchedule(i int) *domain.Schedule {
	start := seedStarts[i%len(seedStarts)]
	var hour, minute int
	_, _ = fmt.Sscanf(start, "%d:%d", &hour, &minute)
	end := hour*60 + minute + seedDurations[i%len(seedDurations)]
	return &domain.Schedule{
		Days:      seedDays[i%len(seedDays)],
		StartTime: start,
		EndTime:   fmt.Sprintf("%02d:%02d", end/60, end%60),
	}
}

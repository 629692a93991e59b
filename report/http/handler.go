package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/report"
	"golang.org/x/sync/singleflight"
)

type ReportHttpHandler struct {
	engine         *report.Engine
	assignmentSrvc *assignment.AssignmentSrvc
	courseSrvc     *course.CourseSrvc
	cache          *cache.Cache
	sfGroup        singleflight.Group
}

func NewReportHttpHandler(
	engine *report.Engine,
	assignmentSrvc *assignment.AssignmentSrvc,
	courseSrvc *course.CourseSrvc,
) *ReportHttpHandler {
	c := cache.New(5*time.Second, 10*time.Second)
	return &ReportHttpHandler{
		engine:         engine,
		assignmentSrvc: assignmentSrvc,
		courseSrvc:     courseSrvc,
		cache:          c,
	}
}

func (h *ReportHttpHandler) RegisterRoutes(r chi.Router) {
	r.Get("/assignments/{assignmentId}/report", h.GetReport)
	r.Get("/assignments/{assignmentId}/report/aggregate", h.GetAggregate)
	r.Get("/courses/{courseId}/students/stats", h.GetStudentStats)
}

// cached returns the value under key, computing it at most once across concurrent requests.
func (h *ReportHttpHandler) cached(key string, compute func() (any, error)) (any, error) {
	if v, found := h.cache.Get(key); found {
		return v, nil
	}
	v, err, _ := h.sfGroup.Do(key, func() (any, error) {
		if v, found := h.cache.Get(key); found {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		h.cache.Set(key, v, cache.DefaultExpiration)
		return v, nil
	})
	return v, err
}

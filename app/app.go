// Package app assembles the services from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/blob"
	"github.com/programme-lv/autograde/bundle"
	"github.com/programme-lv/autograde/conf"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/extension"
	"github.com/programme-lv/autograde/grading"
	"github.com/programme-lv/autograde/moss"
	"github.com/programme-lv/autograde/plagiarism"
	"github.com/programme-lv/autograde/report"
	"github.com/programme-lv/autograde/s3bucket"
	"github.com/programme-lv/autograde/subm"
	"github.com/programme-lv/autograde/user"
)

type Services struct {
	Store       blob.Store
	Users       *user.UserSrvc
	Courses     *course.CourseSrvc
	Extensions  *extension.ExtensionSrvc
	Packager    *bundle.Packager
	Assignments *assignment.AssignmentSrvc
	Recorder    *subm.Recorder
	Reports     *report.Engine
	Plagiarism  *plagiarism.Bridge
	// Receiver is nil when no result queue is configured.
	Receiver *grading.ResultReceiver
}

type repos struct {
	users       user.Repo
	courses     course.Repo
	extensions  extension.Repo
	assignments assignment.Repo
	subms       subm.Repo
}

func inMemRepos() repos {
	return repos{
		users:       user.NewInMemRepo(),
		courses:     course.NewInMemRepo(),
		extensions:  extension.NewInMemRepo(),
		assignments: assignment.NewInMemRepo(),
		subms:       subm.NewInMemRepo(),
	}
}

func pgRepos(pool *pgxpool.Pool) repos {
	return repos{
		users:       user.NewPgRepo(pool),
		courses:     course.NewPgRepo(pool),
		extensions:  extension.NewPgRepo(pool),
		assignments: assignment.NewPgRepo(pool),
		subms:       subm.NewPgRepo(pool),
	}
}

// NewStore opens the configured blob store.
func NewStore(ctx context.Context, cfg conf.Storage) (blob.Store, error) {
	switch cfg.Backend {
	case "s3":
		return s3bucket.NewS3Bucket(ctx, s3bucket.Options{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	case "dir", "":
		return blob.NewDirStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// New wires every service. A nil pool selects in-memory repositories.
func New(ctx context.Context, cfg conf.Config, store blob.Store, pool *pgxpool.Pool) (*Services, error) {
	r := inMemRepos()
	if pool != nil {
		r = pgRepos(pool)
	}

	s := &Services{Store: store}
	s.Users = user.NewUserSrvc(r.users)
	s.Courses = course.NewCourseSrvc(r.courses, s.Users)
	s.Extensions = extension.NewExtensionSrvc(r.extensions, s.Courses)
	s.Packager = bundle.NewPackager(store, cfg.Grading.RunAPIURL)
	s.Assignments = assignment.NewAssignmentSrvc(r.assignments, store, s.Packager, s.Courses)

	var dispatcher subm.Dispatcher = grading.NopDispatcher{}
	var sqsClient grading.SqsAPI
	if cfg.Grading.SubmQueueURL != "" || cfg.Grading.ResponseQueueURL != "" {
		client, err := grading.NewSqsClient(ctx, cfg.Grading.SqsRegion)
		if err != nil {
			return nil, err
		}
		sqsClient = client
	}
	if cfg.Grading.SubmQueueURL != "" {
		dispatcher = grading.NewSqsDispatcher(sqsClient, cfg.Grading.SubmQueueURL, cfg.Grading.ResponseQueueURL)
	}
	s.Recorder = subm.NewRecorder(r.subms, store, s.Assignments, s.Courses, dispatcher)
	if cfg.Grading.ResponseQueueURL != "" {
		s.Receiver = grading.NewResultReceiver(sqsClient, cfg.Grading.ResponseQueueURL, s.Recorder,
			slog.Default().With("component", "grading_results"))
	}

	s.Reports = report.NewEngine(s.Assignments, s.Courses, s.Recorder, s.Extensions)
	s.Plagiarism = plagiarism.NewBridge(s.Reports, s.Assignments, s.Recorder, store,
		moss.NewClient(cfg.Moss.UserID, cfg.Moss.Host, cfg.Moss.Port),
		plagiarism.Config{
			Language: cfg.Moss.Language,
			Timeout:  cfg.Moss.Timeout(),
		})
	return s, nil
}

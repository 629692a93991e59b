package course_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/pgdb/pgtest"
	"github.com/programme-lv/autograde/srvcerror"
	"github.com/programme-lv/autograde/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, users *user.UserSrvc, username, email string) user.User {
	t.Helper()
	u, err := users.Register(context.Background(), user.RegisterParams{
		Username: username,
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func testEnrollment(t *testing.T, userRepo user.Repo, courseRepo course.Repo) {
	ctx := context.Background()
	users := user.NewUserSrvc(userRepo)
	srvc := course.NewCourseSrvc(courseRepo, users)

	prof := register(t, users, "prof", "prof@uni.edu")
	zoe := register(t, users, "zoe", "zoe@uni.edu")
	adam := register(t, users, "adam", "adam@uni.edu")

	_, err := srvc.CreateCourse(ctx, course.CreateCourseParams{UserID: prof.ID, Name: "CS101"})
	assert.True(t, srvcerror.HasCode(err, course.ErrCodeNotInstructor), "got %v", err)

	in1, err := srvc.BecomeInstructor(ctx, prof.ID)
	require.NoError(t, err)
	in2, err := srvc.BecomeInstructor(ctx, prof.ID)
	require.NoError(t, err)
	assert.Equal(t, in1.ID, in2.ID)

	c, err := srvc.CreateCourse(ctx, course.CreateCourseParams{
		UserID:           prof.ID,
		Name:             "CS101",
		CourseCode:       "CS-101",
		MaxExtensionDays: 10,
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), c.EnrollKey)
	assert.Equal(t, 10, c.MaxExtensionDays)

	_, _, err = srvc.Join(ctx, zoe.ID, "NOPE00")
	assert.True(t, srvcerror.HasCode(err, course.ErrCodeInvalidEnrollKey))

	joined, zoeStudent, err := srvc.Join(ctx, zoe.ID, c.EnrollKey)
	require.NoError(t, err)
	assert.Equal(t, c.ID, joined.ID)
	assert.Equal(t, "zoe", zoeStudent.RollNumber())
	assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]{12}$`), zoeStudent.SubmissionPass)

	// joining twice keeps the same profile
	_, again, err := srvc.Join(ctx, zoe.ID, c.EnrollKey)
	require.NoError(t, err)
	assert.Equal(t, zoeStudent.ID, again.ID)
	assert.Equal(t, zoeStudent.SubmissionPass, again.SubmissionPass)

	_, adamStudent, err := srvc.Join(ctx, adam.ID, c.EnrollKey)
	require.NoError(t, err)

	students, err := srvc.ListStudents(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "adam@uni.edu", students[0].Email)
	assert.Equal(t, "zoe@uni.edu", students[1].Email)

	ok, err := srvc.IsEnrolled(ctx, c.ID, adamStudent.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = srvc.IsInstructorOf(ctx, prof.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = srvc.IsInstructorOf(ctx, zoe.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, srvcerror.HasCode(srvc.RequireInstructorOf(ctx, zoe.ID, c.ID), srvcerror.ErrCodeForbidden))

	st, err := srvc.RequireEnrolledStudent(ctx, zoe.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, zoeStudent.ID, st.ID)
	_, err = srvc.RequireEnrolledStudent(ctx, prof.ID, c.ID)
	assert.True(t, srvcerror.HasCode(err, course.ErrCodeNotEnrolled))

	courses, err := srvc.ListInstructorCourses(ctx, prof.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, c.EnrollKey, courses[0].EnrollKey)
}

func TestEnrollmentInMem(t *testing.T) {
	testEnrollment(t, user.NewInMemRepo(), course.NewInMemRepo())
}

func TestEnrollmentPg(t *testing.T) {
	pool := pgtest.NewDB(t)
	testEnrollment(t, user.NewPgRepo(pool), course.NewPgRepo(pool))
}

func TestRollNumber(t *testing.T) {
	assert.Equal(t, "jdoe", course.Student{Email: "jdoe@example.com"}.RollNumber())
	assert.Equal(t, "no-at-sign", course.Student{Email: "no-at-sign"}.RollNumber())
}

func TestKeys(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		k, err := course.NewEnrollKey()
		require.NoError(t, err)
		require.Len(t, k, 6)
		seen[k] = true
	}
	assert.Greater(t, len(seen), 45)

	p, err := course.NewSubmissionPass()
	require.NoError(t, err)
	assert.Len(t, p, 12)
}

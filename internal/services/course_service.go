package services

import (
	"errors"
	"fmt"

	"github.com/damilareoj/student-portal-backend/internal/dto"
	"github.com/damilareoj/student-portal-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCourseExists   = errors.New("course already exists")
	ErrCourseNotFound = errors.New("course not found")
)

// CourseService manages the catalog and per-student enrollments.
type CourseService struct {
	db *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

func (s *CourseService) ListCatalog() ([]models.Course, error) {
	var courses []models.Course
	if err := s.db.Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	return courses, nil
}

func (s *CourseService) ListEnrolled(userID uuid.UUID) ([]models.Course, error) {
	user := models.User{ID: userID}
	var courses []models.Course
	if err := s.db.Model(&user).Association("Courses").Find(&courses); err != nil {
		return nil, fmt.Errorf("failed to fetch registered courses: %w", err)
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Enroll adds the course to the student's list. Enrolling twice is a no-op.
func (s *CourseService) Enroll(userID, courseID uuid.UUID) ([]models.Course, error) {
	var course models.Course
	if err := s.db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}

	user := models.User{ID: userID}
	if err := s.db.Model(&user).Association("Courses").Append(&course); err != nil {
		return nil, fmt.Errorf("failed to register course: %w", err)
	}
	return s.ListEnrolled(userID)
}

func (s *CourseService) Unenroll(userID, courseID uuid.UUID) ([]models.Course, error) {
	user := models.User{ID: userID}
	course := models.Course{ID: courseID}
	if err := s.db.Model(&user).Association("Courses").Delete(&course); err != nil {
		return nil, fmt.Errorf("failed to remove course: %w", err)
	}
	return s.ListEnrolled(userID)
}

func (s *CourseService) Create(req *dto.CreateCourseRequest) (*models.Course, error) {
	var existing models.Course
	if err := s.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, ErrCourseExists
	}

	course := models.Course{
		Code:       req.Code,
		Title:      req.Title,
		Units:      req.Units,
		Department: req.Department,
	}
	if course.Units == 0 {
		course.Units = 3
	}

	if err := s.db.Create(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCourseExists
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return &course, nil
}

func (s *CourseService) Delete(courseID uuid.UUID) error {
	if err := s.db.Delete(&models.Course{}, "id = ?", courseID).Error; err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

// Stats returns the enrolled-student count per course.
func (s *CourseService) Stats() ([]dto.CourseStat, error) {
	var stats []dto.CourseStat
	err := s.db.Table("courses").
		Select("courses.id, courses.code, courses.title, COUNT(uc.user_id) AS student_count").
		Joins("LEFT JOIN user_courses uc ON uc.course_id = courses.id").
		Where("courses.deleted_at IS NULL").
		Group("courses.id, courses.code, courses.title").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate course stats: %w", err)
	}
	return stats, nil
}

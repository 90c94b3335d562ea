package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "keyper/internal/errors"
	"keyper/internal/models"
	"keyper/internal/pagination"
)

// categoryService handles expense category business logic. The category
// tree is shared platform-wide, so mutations are restricted to
// administrators while reads are open to any authenticated user.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

func (s *categoryService) requireAdmin(userID uint) error {
	user, err := loadUser(s.db, userID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleAdmin && !(user.IsStaff && user.IsSuperuser) {
		return apperrors.ErrForbidden
	}
	return nil
}

// CreateCategory creates a category, optionally as a sub-category.
func (s *categoryService) CreateCategory(userID uint, name, color, icon string, sortOrder int, parentID *uint) (*models.Category, error) {
	if err := s.requireAdmin(userID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	if parentID != nil {
		var parent models.Category
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Only one level of nesting is supported.
		if parent.ParentID != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "parent must be a principal category")
		}
	}

	category := &models.Category{
		Name:      name,
		SortOrder: sortOrder,
		ParentID:  parentID,
	}
	if color != "" {
		category.Color = color
	}
	if icon != "" {
		category.Icon = icon
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategories returns a paginated list of categories ordered for display.
func (s *categoryService) GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Category{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := s.db.Preload("Parent").
		Order("sort_order ASC, name ASC").
		Scopes(pagination.Paginate(page)).
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID returns a category with its parent and children.
func (s *categoryService) GetCategoryByID(categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.Preload("Parent").Preload("Children").First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates category fields.
func (s *categoryService) UpdateCategory(userID, categoryID uint, name, color, icon string, sortOrder *int, parentID *uint) (*models.Category, error) {
	if err := s.requireAdmin(userID); err != nil {
		return nil, err
	}

	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if color != "" {
		updates["color"] = color
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if sortOrder != nil {
		updates["sort_order"] = *sortOrder
	}
	if parentID != nil {
		if *parentID == categoryID {
			return nil, apperrors.ErrSelfParentCategory
		}
		var parent models.Category
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["parent_id"] = *parentID
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory removes a category that has no children and is not
// referenced by any expense or budget.
func (s *categoryService) DeleteCategory(userID, categoryID uint) error {
	if err := s.requireAdmin(userID); err != nil {
		return err
	}

	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return err
	}

	var children int64
	if err := s.db.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&children).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if children > 0 {
		return apperrors.ErrCategoryHasChildren
	}

	var inUse int64
	if err := s.db.Model(&models.Expense{}).Where("category_id = ?", categoryID).Count(&inUse).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if inUse == 0 {
		if err := s.db.Model(&models.Budget{}).Where("category_id = ?", categoryID).Count(&inUse).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	if inUse > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

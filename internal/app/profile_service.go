package app

import (
	"context"
	"errors"
	"strings"

	"devconnector/internal/model"
	"devconnector/internal/repository"
)

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
	Save(ctx context.Context, profile *model.Profile) error
	DeleteByUserID(ctx context.Context, userID string) error
	AddExperience(ctx context.Context, exp *model.Experience) error
	DeleteExperience(ctx context.Context, profileID, id string) error
	AddEducation(ctx context.Context, edu *model.Education) error
	DeleteEducation(ctx context.Context, profileID, id string) error
}

type ProfileService struct {
	profileRepo ProfileStore
}

type ProfileInput struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Status         string `json:"status"`
	Bio            string `json:"bio"`
	GitHubUsername string `json:"githubusername"`
	Skills         string `json:"skills"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

type ExperienceInput struct {
	Title       string `json:"title" validate:"required" msg:"Title is required"`
	Company     string `json:"company" validate:"required" msg:"Company is required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required" msg:"From date is required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type EducationInput struct {
	School       string `json:"school" validate:"required" msg:"School is required"`
	Degree       string `json:"degree" validate:"required" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required" msg:"Field of study is required"`
	From         string `json:"from" validate:"required" msg:"From date is required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func NewProfileService(profileRepo ProfileStore) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

func (s *ProfileService) GetOwnProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return s.GetByUserID(ctx, userID)
}

func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, ErrProfileNotFound
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	normalizeProfile(profile)
	return profile, nil
}

// UpsertProfile creates the caller's profile or replaces its scalar fields.
func (s *ProfileService) UpsertProfile(ctx context.Context, userID string, input ProfileInput) (*model.Profile, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	// A concurrent create can win the unique user_id index; the second
	// attempt then finds that row and updates it.
	for attempt := 0; ; attempt++ {
		profile, err := s.profileRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			profile = &model.Profile{UserID: userID}
		}
		applyProfileInput(profile, input)

		err = s.profileRepo.Save(ctx, profile)
		if errors.Is(err, repository.ErrDuplicate) && attempt == 0 {
			continue
		}
		if err != nil {
			return nil, err
		}
		return s.GetByUserID(ctx, userID)
	}
}

func applyProfileInput(profile *model.Profile, input ProfileInput) {
	profile.Company = strings.TrimSpace(input.Company)
	profile.Website = strings.TrimSpace(input.Website)
	profile.Location = strings.TrimSpace(input.Location)
	profile.Status = strings.TrimSpace(input.Status)
	profile.Bio = strings.TrimSpace(input.Bio)
	profile.GitHubUsername = strings.TrimSpace(input.GitHubUsername)
	profile.Skills = splitList(input.Skills)
	profile.Social = model.Social{
		YouTube:   strings.TrimSpace(input.YouTube),
		Twitter:   strings.TrimSpace(input.Twitter),
		Facebook:  strings.TrimSpace(input.Facebook),
		LinkedIn:  strings.TrimSpace(input.LinkedIn),
		Instagram: strings.TrimSpace(input.Instagram),
	}
}

func (s *ProfileService) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	for i := range profiles {
		normalizeProfile(&profiles[i])
	}
	return profiles, nil
}

// DeleteProfile removes the profile only; the user and their posts stay.
func (s *ProfileService) DeleteProfile(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	return s.profileRepo.DeleteByUserID(ctx, userID)
}

func (s *ProfileService) AddExperience(ctx context.Context, userID string, input ExperienceInput) (*model.Profile, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	from, ok := parseDate(input.From)
	if !ok {
		return nil, invalidField("from", "From date must be a date")
	}
	to, ok := parseOptionalDate(input.To)
	if !ok {
		return nil, invalidField("to", "To date must be a date")
	}
	if input.Current {
		to = nil
	}

	profile, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	exp := &model.Experience{
		ProfileID:   profile.ID,
		Title:       strings.TrimSpace(input.Title),
		Company:     strings.TrimSpace(input.Company),
		Location:    strings.TrimSpace(input.Location),
		From:        from,
		To:          to,
		Current:     input.Current,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.profileRepo.AddExperience(ctx, exp); err != nil {
		return nil, err
	}
	return s.GetByUserID(ctx, userID)
}

// RemoveExperience is a no-op for ids the profile does not contain.
func (s *ProfileService) RemoveExperience(ctx context.Context, userID, expID string) (*model.Profile, error) {
	profile, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.DeleteExperience(ctx, profile.ID, expID); err != nil {
		return nil, err
	}
	return s.GetByUserID(ctx, userID)
}

func (s *ProfileService) AddEducation(ctx context.Context, userID string, input EducationInput) (*model.Profile, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	from, ok := parseDate(input.From)
	if !ok {
		return nil, invalidField("from", "From date must be a date")
	}
	to, ok := parseOptionalDate(input.To)
	if !ok {
		return nil, invalidField("to", "To date must be a date")
	}
	if input.Current {
		to = nil
	}

	profile, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	edu := &model.Education{
		ProfileID:    profile.ID,
		School:       strings.TrimSpace(input.School),
		Degree:       strings.TrimSpace(input.Degree),
		FieldOfStudy: strings.TrimSpace(input.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      input.Current,
		Description:  strings.TrimSpace(input.Description),
	}
	if err := s.profileRepo.AddEducation(ctx, edu); err != nil {
		return nil, err
	}
	return s.GetByUserID(ctx, userID)
}

// RemoveEducation is a no-op for ids the profile does not contain.
func (s *ProfileService) RemoveEducation(ctx context.Context, userID, eduID string) (*model.Profile, error) {
	profile, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.DeleteEducation(ctx, profile.ID, eduID); err != nil {
		return nil, err
	}
	return s.GetByUserID(ctx, userID)
}

func normalizeProfile(p *model.Profile) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []model.Experience{}
	}
	if p.Education == nil {
		p.Education = []model.Education{}
	}
}

package fixtures

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	"github.com/doodlesbykumbi/jobtracker/pkg/validation"
)

const minPasswordLength = 8

var errDryRun = errors.New("dry run")

// LoadResult summarizes the changes made by a load
type LoadResult struct {
	CreatedUsers        []string `json:"created_users"`
	UpdatedUsers        []string `json:"updated_users"`
	CreatedApplications int      `json:"created_applications"`
	UpdatedApplications int      `json:"updated_applications"`
	StatusChanges       int      `json:"status_changes"`
	DryRun              bool     `json:"dry_run"`
}

// Loader applies fixture statements through a Store
type Loader struct {
	store  Store
	dryRun bool
	now    func() time.Time
}

// NewLoader creates a new fixture loader
func NewLoader(s Store) *Loader {
	return &Loader{store: s, now: time.Now}
}

// WithDryRun sets whether to validate and roll back instead of committing
func (l *Loader) WithDryRun(dryRun bool) *Loader {
	l.dryRun = dryRun
	return l
}

// LoadFromReader parses and loads fixtures from an io.Reader
func (l *Loader) LoadFromReader(ctx context.Context, r io.Reader) (*LoadResult, error) {
	statements, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return l.Load(ctx, statements)
}

// Load validates every statement, then applies users before applications
// so an application can name a user defined later in the same document.
func (l *Loader) Load(ctx context.Context, statements Statements) (*LoadResult, error) {
	if err := validateStatements(statements); err != nil {
		return nil, err
	}

	var users []User
	var apps []Application
	for _, st := range statements {
		switch st := st.(type) {
		case User:
			users = append(users, st)
		case Application:
			apps = append(apps, st)
		}
	}

	result := &LoadResult{
		CreatedUsers: []string{},
		UpdatedUsers: []string{},
		DryRun:       l.dryRun,
	}
	err := l.store.Transaction(ctx, func(tx Store) error {
		owners := map[string]*model.User{}
		for _, u := range users {
			loaded, err := l.loadUser(ctx, tx, u, result)
			if err != nil {
				return fmt.Errorf("user %q: %w", u.Username, err)
			}
			owners[loaded.Username] = loaded
		}
		for _, a := range apps {
			if err := l.loadApplication(ctx, tx, a, owners, result); err != nil {
				return fmt.Errorf("application %s/%s: %w", a.CompanyName, a.Position, err)
			}
		}
		if l.dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, err
	}
	return result, nil
}

func (l *Loader) loadUser(ctx context.Context, tx Store, u User, result *LoadResult) (*model.User, error) {
	existing, err := tx.FetchUserByUsername(ctx, u.Username)
	if errors.Is(err, store.ErrUserNotFound) {
		created := &model.User{
			Username:   u.Username,
			Email:      u.Email,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			Role:       model.Role(u.Role),
			IsActive:   true,
			DateJoined: l.now(),
		}
		if u.Password != "" {
			if err := created.SetPassword(u.Password); err != nil {
				return nil, err
			}
		} else {
			created.SetUnusablePassword()
		}
		if err := tx.CreateUser(ctx, created); err != nil {
			return nil, err
		}
		result.CreatedUsers = append(result.CreatedUsers, created.Username)
		return created, nil
	}
	if err != nil {
		return nil, err
	}

	changed := false
	if u.Role != "" && model.Role(u.Role) != existing.Role {
		if err := tx.UpdateRole(ctx, existing.Username, model.Role(u.Role)); err != nil {
			return nil, err
		}
		existing.Role = model.Role(u.Role)
		changed = true
	}
	if u.Password != "" && !existing.CheckPassword(u.Password) {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		if err := tx.UpdatePassword(ctx, existing.Username, string(hash)); err != nil {
			return nil, err
		}
		existing.Password = string(hash)
		changed = true
	}
	if changed {
		result.UpdatedUsers = append(result.UpdatedUsers, existing.Username)
	}
	return existing, nil
}

func (l *Loader) owner(ctx context.Context, tx Store, username string, owners map[string]*model.User) (*model.User, error) {
	if u, ok := owners[username]; ok {
		return u, nil
	}
	u, err := tx.FetchUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	owners[username] = u
	return u, nil
}

func (l *Loader) loadApplication(ctx context.Context, tx Store, a Application, owners map[string]*model.User, result *LoadResult) error {
	owner, err := l.owner(ctx, tx, a.User, owners)
	if err != nil {
		return err
	}

	patch := a.patch()
	existing, err := tx.FindApplication(ctx, owner.ID, a.CompanyName, a.Position)
	if errors.Is(err, store.ErrApplicationNotFound) {
		app := &model.JobApplication{UserID: owner.ID, CurrentStatus: model.StatusApplied}
		patch.Apply(app)
		if err := tx.CreateApplication(ctx, app); err != nil {
			return err
		}
		result.CreatedApplications++
		return nil
	}
	if err != nil {
		return err
	}

	_, audit, err := tx.UpdateApplication(ctx, store.OwnerScope(owner.ID), existing.ID, patch, owner.ID)
	if err != nil {
		return err
	}
	result.UpdatedApplications++
	if audit != nil {
		result.StatusChanges++
	}
	return nil
}

// patch turns the set fields of a into an update. Values were checked by
// validateStatements.
func (a Application) patch() store.ApplicationPatch {
	text := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	patch := store.ApplicationPatch{
		CompanyName:  text(a.CompanyName),
		Position:     text(a.Position),
		Location:     text(a.Location),
		ContactName:  text(a.ContactName),
		ContactEmail: text(a.ContactEmail),
		Notes:        text(a.Notes),
	}
	if a.AppliedDate != "" {
		if d, err := model.ParseDate(a.AppliedDate); err == nil {
			patch.AppliedDate = store.Value(d)
		}
	}
	if a.Status != "" {
		if st, err := model.PipelineStatusString(a.Status); err == nil {
			patch.CurrentStatus = &st
		}
	}
	return patch
}

func validateStatements(statements Statements) error {
	var r validation.Result
	for i, st := range statements {
		prefix := fmt.Sprintf("%d.", i)
		switch st := st.(type) {
		case User:
			validateUser(&r, prefix, st)
		case Application:
			validateApplication(&r, prefix, st)
		}
	}
	return r.Err()
}

func validateUser(r *validation.Result, prefix string, u User) {
	if strings.TrimSpace(u.Username) == "" {
		r.Add(prefix+"username", "This field is required.")
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			r.Add(prefix+"email", "Enter a valid email address.")
		}
	}
	if u.Role != "" && !model.Role(u.Role).Valid() {
		r.Add(prefix+"role", fmt.Sprintf("%q is not a valid role.", u.Role))
	}
	if u.Password != "" && len([]rune(u.Password)) < minPasswordLength {
		r.Add(prefix+"password", fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLength))
	}
}

func validateApplication(r *validation.Result, prefix string, a Application) {
	for field, value := range map[string]string{
		"user":         a.User,
		"company_name": a.CompanyName,
		"position":     a.Position,
	} {
		if strings.TrimSpace(value) == "" {
			r.Add(prefix+field, "This field is required.")
		}
	}
	if a.AppliedDate != "" {
		if _, err := model.ParseDate(a.AppliedDate); err != nil {
			r.Add(prefix+"applied_date", "Date has wrong format. Use YYYY-MM-DD.")
		}
	}
	if a.Status != "" {
		if _, err := model.PipelineStatusString(a.Status); err != nil {
			r.Add(prefix+"status", fmt.Sprintf("%q is not a valid choice.", a.Status))
		}
	}
	if a.ContactEmail != "" {
		if _, err := mail.ParseAddress(a.ContactEmail); err != nil {
			r.Add(prefix+"contact_email", "Enter a valid email address.")
		}
	}
}

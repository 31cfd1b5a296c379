package services

import (
	"strings"
	"unicode"

	"github.com/dmitrijs2005/otpsteward/internal/common"
	"github.com/dmitrijs2005/otpsteward/internal/server/models"
)

// validateCreate checks a create request in the order callers observe:
// uuid, then name, then role.
func validateCreate(p CreateParams) (models.Role, error) {
	if p.UUID == "" {
		return "", common.Permanent(common.DiagMissingUUID)
	}
	if p.Name == nil {
		return "", common.Permanent(common.DiagMissingName)
	}
	if err := validateName(*p.Name); err != nil {
		return "", err
	}

	role, ok := models.ParseRole(p.Role)
	if !ok {
		return "", common.Permanent(common.DiagInvalidRole)
	}
	return role, nil
}

// validateName rejects names that would break "user/<name>/<id>" paths:
// whitespace anywhere, a leading "-", or any of "/", ".", ":".
func validateName(name string) error {
	if name == "" {
		return common.Permanent(common.DiagEmptyName)
	}
	if strings.IndexFunc(name, unicode.IsSpace) != -1 ||
		strings.HasPrefix(name, "-") ||
		strings.ContainsAny(name, "/.:") {
		return common.Permanent(common.DiagInvalidName)
	}
	return nil
}

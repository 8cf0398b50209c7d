package family

import "errors"

var (
	ErrFamilyNotFound       = errors.New("family not found")
	ErrFamilyCodeNotFound   = errors.New("family code not found")
	ErrAlreadyInFamily      = errors.New("already in family")
	ErrMemberNotFound       = errors.New("member not found")
	ErrNotFamilyHead        = errors.New("not family head")
	ErrCannotRemoveHead     = errors.New("cannot remove family head")
	ErrHeadHasMembers       = errors.New("family head must remove members before leaving")
	ErrForbidden            = errors.New("not enough permissions")
	ErrCodeGenerationFailed = errors.New("family code generation failed")
	ErrNameRequired         = errors.New("family name is required")
	ErrCodeRequired         = errors.New("family code is required")
)

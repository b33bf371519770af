package enums

import "database/sql/driver"

// UserRole is the authorization role of a user.
type UserRole string

const (
	UserRoleSuperuser UserRole = "superuser"
	UserRoleAdmin     UserRole = "admin"
	UserRoleUser      UserRole = "user"
	UserRoleGuest     UserRole = "guest"
)

var userRoles = []UserRole{UserRoleSuperuser, UserRoleAdmin, UserRoleUser, UserRoleGuest}

// UserRoles returns every member of UserRole.
func UserRoles() []UserRole { return append([]UserRole(nil), userRoles...) }

// ParseUserRole parses s as a UserRole.
func ParseUserRole(s string) (UserRole, error) { return parse("user_role", userRoles, s) }

func (r UserRole) IsValid() bool { _, err := ParseUserRole(string(r)); return err == nil }

func (r *UserRole) UnmarshalJSON(data []byte) error {
	return unmarshal("user_role", userRoles, data, r)
}

func (r *UserRole) Scan(src any) error { return scan("user_role", userRoles, src, r) }

func (r UserRole) Value() (driver.Value, error) { return value("user_role", userRoles, r) }

// SSOProvider identifies an external single sign-on provider linked to a user.
type SSOProvider string

const (
	SSOProviderGoogle    SSOProvider = "google"
	SSOProviderMicrosoft SSOProvider = "microsoft"
	SSOProviderGitHub    SSOProvider = "github"
	SSOProviderFacebook  SSOProvider = "facebook"
	SSOProviderOkta      SSOProvider = "okta"
	SSOProviderDiscord   SSOProvider = "discord"
	SSOProviderApple     SSOProvider = "apple"
	SSOProviderCustom    SSOProvider = "custom"
)

var ssoProviders = []SSOProvider{
	SSOProviderGoogle, SSOProviderMicrosoft, SSOProviderGitHub, SSOProviderFacebook,
	SSOProviderOkta, SSOProviderDiscord, SSOProviderApple, SSOProviderCustom,
}

// SSOProviders returns every member of SSOProvider.
func SSOProviders() []SSOProvider { return append([]SSOProvider(nil), ssoProviders...) }

// ParseSSOProvider parses s as an SSOProvider.
func ParseSSOProvider(s string) (SSOProvider, error) { return parse("sso_provider", ssoProviders, s) }

func (p SSOProvider) IsValid() bool { _, err := ParseSSOProvider(string(p)); return err == nil }

func (p *SSOProvider) UnmarshalJSON(data []byte) error {
	return unmarshal("sso_provider", ssoProviders, data, p)
}

func (p *SSOProvider) Scan(src any) error { return scan("sso_provider", ssoProviders, src, p) }

func (p SSOProvider) Value() (driver.Value, error) { return value("sso_provider", ssoProviders, p) }

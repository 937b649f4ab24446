package users

// ProfileResponse is the authenticated user's profile.
// @Description Current user profile
type ProfileResponse struct {
	// example: alice
	Username string `json:"username"`
	// Absolute URL of the current picture, null when none is set.
	// example: http://localhost:5000/uploads/1_me.png
	ProfilePic *string `json:"profile_pic"`
}

// UploadResponse is returned after a successful picture upload.
// @Description Result of a profile picture upload
type UploadResponse struct {
	// example: Profile picture updated
	Message string `json:"message"`
	// example: http://localhost:5000/uploads/1_me.png
	ProfilePic string `json:"profile_pic"`
}

// Upload is a received picture before validation.
type Upload struct {
	Filename     string
	DeclaredType string
	Data         []byte
}

// Package utils provides shared utility functions and constants
package utils

// ContextKeyFlash is the key used to store the pending notification in the echo context
const ContextKeyFlash = "flash"

// ContextKeyCSRF is the key the CSRF middleware stores its token under
const ContextKeyCSRF = "csrf"

// FlashCookieName is the name of the one-shot notification cookie
const FlashCookieName = "flash"

// CSRFCookieName is the name of the CSRF token cookie
const CSRFCookieName = "csrf"

// CSRFFormField is the hidden form field carrying the CSRF token
const CSRFFormField = "_csrf"

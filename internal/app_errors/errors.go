package app_errors

import "errors"

var ErrOutlineNotFound = errors.New("course outline not found")
var ErrUnsupportedKey = errors.New("course key does not support outlines")
var ErrTokenExpired = errors.New("token expired")
var ErrForbidden = errors.New("insufficient permissions")

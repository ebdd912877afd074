package service

import (
	commonerrors "github.com/smiileyface/ezpunishments/internal/common/errors"
)

var (
	ErrUsernameRequired = commonerrors.NewValidationError(
		"USERNAME_REQUIRED",
		"users must have a valid Minecraft username",
	)

	ErrUsernameTooLong = commonerrors.NewValidationError(
		"USERNAME_TOO_LONG",
		"username must be at most 16 characters",
	)

	ErrInvalidMinecraftName = commonerrors.NewValidationError(
		"INVALID_MINECRAFT_NAME",
		"users must have a valid Minecraft username",
	)

	ErrPasswordTooShort = commonerrors.NewValidationError(
		"PASSWORD_TOO_SHORT",
		"password must be at least 5 characters",
	)

	ErrUsernameTaken = commonerrors.NewValidationError(
		"USERNAME_TAKEN",
		"a user with that username already exists",
	)

	ErrProfileTaken = commonerrors.NewValidationError(
		"PROFILE_TAKEN",
		"a user is already bound to that Minecraft profile",
	)

	// The token endpoint reports bad credentials as a 400, matching the
	// public API contract; 401 is reserved for missing/invalid tokens.
	ErrInvalidCredentials = commonerrors.NewValidationError(
		"INVALID_CREDENTIALS",
		"unable to authenticate with provided credentials",
	)
)

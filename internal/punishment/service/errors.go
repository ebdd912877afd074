package service

import (
	commonerrors "github.com/smiileyface/ezpunishments/internal/common/errors"
)

var (
	ErrTargetRequired = commonerrors.NewValidationError(
		"MC_USERNAME_REQUIRED",
		"punishments must have a target Minecraft username",
	)

	ErrReasonRequired = commonerrors.NewValidationError(
		"REASON_REQUIRED",
		"punishments must have a reason",
	)

	ErrPunishedByRequired = commonerrors.NewValidationError(
		"PUNISHED_BY_REQUIRED",
		"punishments must record who issued them",
	)

	ErrExpiresRequired = commonerrors.NewValidationError(
		"EXPIRES_REQUIRED",
		"punishments must have an expiry timestamp",
	)

	ErrInvalidMinecraftName = commonerrors.NewValidationError(
		"INVALID_MINECRAFT_NAME",
		"punishments must reference valid Minecraft usernames",
	)

	ErrEmptyUpdate = commonerrors.NewValidationError(
		"EMPTY_UPDATE",
		"update must set at least one field",
	)

	ErrPunishmentNotFound = commonerrors.NewDomainError(
		"PUNISHMENT_NOT_FOUND",
		commonerrors.CategoryNotFound,
		404,
		"punishment not found",
	)
)

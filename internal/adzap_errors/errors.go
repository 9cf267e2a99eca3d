package adzap_errors

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

const (
	CodeUniqueConstraint     = "23505"
	CodeForeignKeyConstraint = "23503"
)

var (
	ErrInternal               = errors.New("internal service error. please try again later")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrInvalidUserCredentials = errors.New("invalid email or password")
	ErrUnAuthorized           = errors.New("user not allowed to perform this action")
	ErrNotFound               = errors.New("entity not found")
	ErrCapacityFull           = errors.New("registration capacity reached")
	ErrDuplicateEmail         = errors.New("entity with given email already exist")
	ErrTooManyAttempts        = errors.New("too many failed login attempts. please try again later")
	ErrEmailServiceStopped    = errors.New("email service is stopped currently")
)

// HandleDBErrors translates database errors into service errors.
// errMsgs maps a pg error code to constraint-name specific messages.
func HandleDBErrors(
	err error,
	errMsgs map[string]map[string]string,
	contextMessage string,
) error {
	if errors.Is(err, sql.ErrNoRows) {
		log.Error(fmt.Sprintf("%s, %v", contextMessage, ErrNotFound))
		return ErrNotFound
	}

	// assume its an internal error first
	err = fmt.Errorf(
		"%w, %s, %w",
		ErrInternal,
		contextMessage,
		err,
	)

	// check if its a pg error
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		log.Error(err)
		return err
	}

	if errMsgs == nil {
		log.Warnf("got null errMsgs")
		log.Error(err)
		return err
	}

	if pgErr.Code == CodeUniqueConstraint {
		msgUniqueConstraint, ok := errMsgs[CodeUniqueConstraint]
		if !ok {
			log.Warnf("no msg map found for unique key constraint.")
			return fmt.Errorf(
				"%w, %s",
				ErrInvalidRequest,
				pgErr.Detail,
			)
		}
		return HandleUniqueKeyError(pgErr, msgUniqueConstraint)
	}

	if pgErr.Code == CodeForeignKeyConstraint {
		msgForeignKey, ok := errMsgs[CodeForeignKeyConstraint]
		if !ok {
			log.Warnf("no msg map found for foreign key constraint.")
			return fmt.Errorf(
				"%w, %s",
				ErrInvalidRequest,
				pgErr.Detail,
			)
		}
		msg, ok := msgForeignKey[pgErr.ConstraintName]
		if !ok {
			msg = pgErr.Detail
		}
		err := fmt.Errorf("%w, %s", ErrInvalidRequest, msg)
		log.Error(err)
		return err
	}

	// unknown error
	log.Error(err)
	return err
}

func HandleUniqueKeyError(pgErr *pgconn.PgError, msgUniqueConstraint map[string]string) error {
	msg, ok := msgUniqueConstraint[pgErr.ConstraintName]
	if !ok {
		log.Warnf(
			"unknown unique key violation, %s",
			pgErr.ConstraintName,
		)
		msg = pgErr.Detail
	}
	err := fmt.Errorf(
		"%w, %s",
		ErrDuplicateEmail,
		msg,
	)
	log.Error(err)
	return err
}

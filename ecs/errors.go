package ecs

import (
	"github.com/YaleSpinup/apierror"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/pkg/errors"
)

// ErrCode maps an aws ECS error onto an apierror
func ErrCode(msg string, err error) error {
	if aerr, ok := errors.Cause(err).(awserr.Error); ok {
		switch aerr.Code() {
		case
			ecs.ErrCodeAccessDeniedException,
			ecs.ErrCodeBlockedException:

			return apierror.New(apierror.ErrForbidden, msg, aerr)
		case
			ecs.ErrCodeServerException:

			return apierror.New(apierror.ErrInternalError, msg, aerr)
		case
			ecs.ErrCodeResourceInUseException,
			ecs.ErrCodeUpdateInProgressException:

			return apierror.New(apierror.ErrConflict, msg, aerr)
		case
			ecs.ErrCodeClusterNotFoundException,
			ecs.ErrCodeResourceNotFoundException:

			return apierror.New(apierror.ErrNotFound, msg, aerr)
		case
			ecs.ErrCodeLimitExceededException,
			ecs.ErrCodeAttributeLimitExceededException:

			return apierror.New(apierror.ErrLimitExceeded, msg, aerr)
		default:
			m := msg + ": " + aerr.Message()
			return apierror.New(apierror.ErrBadRequest, m, aerr)
		}
	}

	return apierror.New(apierror.ErrInternalError, msg, err)
}

package server

import (
	"net/http"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/labstack/echo/v5"
	"github.com/rs/zerolog/log"
)

// Invoke runs a CloudFormation event through fn. The outcome is reported to
// the event's ResponseURL exactly like in Lambda; the HTTP response only says
// whether that report could be delivered.
func Invoke(fn cfn.CustomResourceLambdaFunction) echo.HandlerFunc {
	return func(c *echo.Context) error {
		var event cfn.Event
		if err := c.Bind(&event); err != nil {
			observeInvoke(c, "", outcomeRejected)
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid event body", Code: "BAD_REQUEST"})
		}
		if event.ResponseURL == "" {
			observeInvoke(c, event.RequestType, outcomeRejected)
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ResponseURL is required", Code: "BAD_REQUEST"})
		}
		if event.RequestType == "" {
			observeInvoke(c, event.RequestType, outcomeRejected)
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "RequestType is required", Code: "BAD_REQUEST"})
		}

		log.Debug().Str("request_id", event.RequestID).Str("request_type", string(event.RequestType)).Msg("local invoke")

		reason, err := fn(c.Request().Context(), event)
		if err != nil {
			observeInvoke(c, event.RequestType, outcomeCallbackFailed)
			return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error(), Code: "CALLBACK_FAILED"})
		}
		observeInvoke(c, event.RequestType, outcomeDelivered)
		return c.JSON(http.StatusOK, InvokeResponse{RequestID: event.RequestID, Reason: reason})
	}
}

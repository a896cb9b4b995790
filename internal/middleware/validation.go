package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plan-pleno/internal/schemas"
	"plan-pleno/internal/utils"
)

// ValidateAndSanitizeStruct binds the JSON body into a fresh T, strips markup from
// the fields tagged for it and validates the result. The payload is stored in the
// context under utils.SanitizedPayloadKey as *T.
func ValidateAndSanitizeStruct[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := new(T)
		if err := c.ShouldBindJSON(obj); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}

		validator := utils.GetValidator()
		if err := validator.SanitizeData(obj); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}

		if err := validator.Validate.Struct(obj); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Next()
	}
}

// Payload returns the body stored by ValidateAndSanitizeStruct.
func Payload[T any](c *gin.Context) *T {
	value, _ := c.Get(utils.SanitizedPayloadKey.String())
	obj, _ := value.(*T)
	return obj
}

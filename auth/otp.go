package auth

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/goliatone/go-errors"
)

// OTPExpiry is how long a one time code stays valid after creation.
const OTPExpiry = 10 * time.Minute

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP returns a 6 digit numeric code in [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate OTP code")
	}

	return strconv.FormatInt(otpMin+n.Int64(), 10), nil
}

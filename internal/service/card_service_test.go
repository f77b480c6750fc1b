package service

import (
	"context"
	"testing"

	"kaiserhaus-checkout-service/internal/dto"
	"kaiserhaus-checkout-service/internal/vault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCardEnv(t *testing.T) (*CardService, *fakeCardRepo, vault.Sealer) {
	t.Helper()
	sealer, err := vault.NewAESSealer("clave-de-prueba")
	require.NoError(t, err)
	repo := newFakeCardRepo()
	return NewCardService(repo, sealer), repo, sealer
}

func cardReq(number string) dto.CreateCardRequest {
	return dto.CreateCardRequest{
		Number:     number,
		CVV:        "123",
		HolderName: "Ana Beck",
		Month:      11,
		Year:       2028,
	}
}

func TestCreateCard_SealsNumberAndCVV(t *testing.T) {
	svc, _, sealer := newCardEnv(t)

	card, err := svc.CreateCard(context.Background(), "user-1", cardReq("4111111111111111"))
	require.NoError(t, err)

	assert.Equal(t, "1111", card.Last4)
	assert.Equal(t, "Ana Beck", card.HolderName)
	assert.False(t, card.ID.IsZero())

	// En reposo nunca queda el PAN en claro.
	assert.NotContains(t, card.SealedNumber, "4111111111111111")
	opened, err := sealer.Open(card.SealedNumber)
	require.NoError(t, err)
	assert.Equal(t, "4111111111111111", opened)

	cvv, err := sealer.Open(card.SealedCVV)
	require.NoError(t, err)
	assert.Equal(t, "123", cvv)
}

func TestCreateCard_StripsFormatting(t *testing.T) {
	svc, _, _ := newCardEnv(t)

	card, err := svc.CreateCard(context.Background(), "user-1", cardReq("4111 1111-1111 1111"))
	require.NoError(t, err)
	assert.Equal(t, "1111", card.Last4)
}

func TestCreateCard_RejectsInvalidNumber(t *testing.T) {
	svc, _, _ := newCardEnv(t)
	ctx := context.Background()

	// Falla el dígito verificador.
	_, err := svc.CreateCard(ctx, "user-1", cardReq("4111111111111112"))
	assert.ErrorIs(t, err, ErrInvalidCardNumber)

	// Demasiado corto aunque el checksum cierre.
	_, err = svc.CreateCard(ctx, "user-1", cardReq("59"))
	assert.ErrorIs(t, err, ErrInvalidCardNumber)

	_, err = svc.CreateCard(ctx, "user-1", cardReq("no-es-numero"))
	assert.ErrorIs(t, err, ErrInvalidCardNumber)
}

func TestCreateCard_RejectsShortHolder(t *testing.T) {
	svc, _, _ := newCardEnv(t)

	req := cardReq("4111111111111111")
	req.HolderName = " a "
	_, err := svc.CreateCard(context.Background(), "user-1", req)
	assert.ErrorIs(t, err, ErrInvalidCardHolder)
}

func TestGetCard_ScopedToOwner(t *testing.T) {
	svc, _, _ := newCardEnv(t)
	ctx := context.Background()

	card, err := svc.CreateCard(ctx, "user-1", cardReq("4111111111111111"))
	require.NoError(t, err)

	got, err := svc.GetCard(ctx, card.ID.Hex(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, card.Last4, got.Last4)

	_, err = svc.GetCard(ctx, card.ID.Hex(), "user-2")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestListCards(t *testing.T) {
	svc, _, _ := newCardEnv(t)
	ctx := context.Background()

	_, err := svc.CreateCard(ctx, "user-1", cardReq("4111111111111111"))
	require.NoError(t, err)
	_, err = svc.CreateCard(ctx, "user-1", cardReq("5500005555555559"))
	require.NoError(t, err)
	_, err = svc.CreateCard(ctx, "user-2", cardReq("4111111111111111"))
	require.NoError(t, err)

	cards, err := svc.ListCards(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestDeleteCard(t *testing.T) {
	svc, _, _ := newCardEnv(t)
	ctx := context.Background()

	card, err := svc.CreateCard(ctx, "user-1", cardReq("4111111111111111"))
	require.NoError(t, err)

	// Otro usuario no puede borrarla.
	err = svc.DeleteCard(ctx, card.ID.Hex(), "user-2")
	assert.ErrorIs(t, err, ErrCardNotFound)

	require.NoError(t, svc.DeleteCard(ctx, card.ID.Hex(), "user-1"))

	_, err = svc.GetCard(ctx, card.ID.Hex(), "user-1")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestLuhnValid(t *testing.T) {
	assert.True(t, luhnValid("4111111111111111"))
	assert.True(t, luhnValid("5500005555555559"))
	assert.False(t, luhnValid("4111111111111112"))
	assert.False(t, luhnValid(""))
	assert.False(t, luhnValid("59")) // checksum cierra pero es demasiado corto
}

package filing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/filing"
	"github.com/feral-file/ff-13f-indexer/internal/mocks"
)

func TestFetcher_Fetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	f := filing.NewFetcher(httpClient, filing.NewEdgarIndexExtractor())

	httpClient.EXPECT().GetBytes(gomock.Any(), landingURL).Return([]byte(landingPage), nil)

	fc, err := f.Fetch(context.Background(), domain.FilingReference{Link: landingURL})
	require.NoError(t, err)
	assert.Equal(t, "0001234567", fc.CompanyCIK)
}

func TestFetcher_Fetch_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	f := filing.NewFetcher(httpClient, filing.NewEdgarIndexExtractor())

	httpClient.EXPECT().GetBytes(gomock.Any(), landingURL).Return(nil, errors.New("i/o timeout"))

	_, err := f.Fetch(context.Background(), domain.FilingReference{Link: landingURL})
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Equal(t, domain.SkipReasonFetchFailed, domain.SkipReason(err))
}

func TestFetcher_Fetch_NoLink(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := filing.NewFetcher(mocks.NewMockHTTPClient(ctrl), filing.NewEdgarIndexExtractor())

	_, err := f.Fetch(context.Background(), domain.FilingReference{})
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestFetcher_Fetch_ExtractorError(t *testing.T) {
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	extractor := mocks.NewMockExtractor(ctrl)
	f := filing.NewFetcher(httpClient, extractor)

	httpClient.EXPECT().GetBytes(gomock.Any(), landingURL).Return([]byte("<html></html>"), nil)
	extractor.EXPECT().Extract(landingURL, []byte("<html></html>")).Return(domain.FilingContext{}, domain.ErrDocumentNotFound)

	_, err := f.Fetch(context.Background(), domain.FilingReference{Link: landingURL})
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestFetcher_FetchHoldingsDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	f := filing.NewFetcher(httpClient, filing.NewEdgarIndexExtractor())

	fc := domain.FilingContext{HoldingsDocumentURL: "https://www.sec.gov/infotable.xml"}

	httpClient.EXPECT().GetBytes(gomock.Any(), fc.HoldingsDocumentURL).Return([]byte("<informationTable/>"), nil)
	data, err := f.FetchHoldingsDocument(context.Background(), fc)
	require.NoError(t, err)
	assert.Equal(t, []byte("<informationTable/>"), data)

	httpClient.EXPECT().GetBytes(gomock.Any(), fc.HoldingsDocumentURL).Return(nil, errors.New("404"))
	_, err = f.FetchHoldingsDocument(context.Background(), fc)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
}

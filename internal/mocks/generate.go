package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ValuesAPI --dir ../infrastructure/sheets --output infrastructure/sheets --outpkg sheetsmock --filename values_api_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Provider --dir ../infrastructure/identity/google --output infrastructure/identity/google --outpkg identitymock --filename provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name FixtureSource --dir ../usecase --output usecase --outpkg usecasemock --filename fixture_source_mock.go

package internal

// constants exported by this package
const (
	ServiceName = "brreg-service"

	// endpoints
	OrganizationLookupEndpoint   = "OrganizationLookup"
	OrganizationRetrieveEndpoint = "OrganizationRetrieve"

	// RegistryEndpoint is the Brønnøysund Register Centre entity API.
	RegistryEndpoint = "http://data.brreg.no/enhetsregisteret/enhet"

	// OrganizationNumberLength is the length of a Norwegian organization number.
	OrganizationNumberLength = 9
)
